/*
Package server exposes the marketplace ledger over HTTP.

Requests are submitted as signed JSON documents to /tx. All other endpoints
read the last committed state.
*/
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	marketd "github.com/iov-one/bazaar/cmd/marketd/app"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/x/market"
	"github.com/patrickmn/go-cache"
	"github.com/tendermint/tendermint/libs/log"
)

// maxBodySize limits the size of a submitted request.
const maxBodySize = 1 << 20

// Options configure a Server.
type Options struct {
	// Debug returns full error details to the clients.
	Debug bool
	// CacheTTL is the lifetime of cached query results. Zero disables the
	// cache.
	CacheTTL time.Duration
	Logger   log.Logger
}

// Server handles the HTTP API of a node.
type Server struct {
	node   *marketd.Node
	router *mux.Router
	cache  *cache.Cache
	debug  bool
	logger log.Logger
}

var _ http.Handler = (*Server)(nil)

// New returns a server for given node.
func New(node *marketd.Node, opts Options) *Server {
	s := &Server{
		node:   node,
		debug:  opts.Debug,
		logger: opts.Logger,
	}
	if s.logger == nil {
		s.logger = log.NewNopLogger()
	}
	if opts.CacheTTL > 0 {
		s.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}

	r := mux.NewRouter()
	r.HandleFunc("/tx", s.deliverTx).Methods("POST")
	r.HandleFunc("/check", s.checkTx).Methods("POST")
	r.HandleFunc("/info", s.info).Methods("GET")
	r.HandleFunc("/config", s.config).Methods("GET")
	r.HandleFunc("/items/{id:[0-9]+}", s.item).Methods("GET")
	r.HandleFunc("/listings", s.listings).Methods("GET")
	r.HandleFunc("/listings/{id:[0-9]+}", s.listing).Methods("GET")
	r.HandleFunc("/listings/{id:[0-9]+}/taxes", s.taxes).Methods("GET")
	r.HandleFunc("/accounts/{addr}/items", s.accountItems).Methods("GET")
	r.HandleFunc("/accounts/{addr}/balance", s.accountBalance).Methods("GET")
	r.HandleFunc("/accounts/{addr}/nonce", s.accountNonce).Methods("GET")
	r.HandleFunc("/query/{path:.+}", s.query).Methods("GET")
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, errors.Wrap(errors.ErrNotFound, r.URL.Path))
	})
	r.Use(s.logRequests)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves the API on given address until the context is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("Request served", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// errorResponse is returned for all failed requests.
type errorResponse struct {
	Code uint32 `json:"code"`
	Log  string `json:"log"`
	// Fields lists the request attributes that failed validation.
	Fields []string `json:"fields,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code, msg := errors.CodeInfo(err, s.debug)
	if code == 1 {
		s.logger.Error("Request failed", "err", err)
	}
	writeJSON(w, httpStatus(err), errorResponse{
		Code:   code,
		Log:    msg,
		Fields: errors.Fields(err),
	})
}

func httpStatus(err error) int {
	switch {
	case errors.ErrNotFound.Is(err), market.ErrUnknownItem.Is(err):
		return http.StatusNotFound
	case errors.ErrUnauthorized.Is(err):
		return http.StatusUnauthorized
	case errors.ErrDatabase.Is(err), errors.ErrPanic.Is(err), errors.ErrHuman.Is(err):
		return http.StatusInternalServerError
	}
	if code, _ := errors.CodeInfo(err, false); code == 1 {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
