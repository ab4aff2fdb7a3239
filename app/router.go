package app

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router allows us to register many handlers with different
// paths and then direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]bazaar.Handler
	msgs   map[string]reflect.Type
}

var _ bazaar.Registry = (*Router)(nil)
var _ bazaar.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]bazaar.Handler, 10),
		msgs:   make(map[string]reflect.Type, 10),
	}
}

// Handle adds a new Handler for the path of given message. The message type
// is remembered so that requests can be decoded by path.
// panics if another Handler was already registered
func (r *Router) Handle(msg bazaar.Msg, h bazaar.Handler) {
	path := msg.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h

	tp := reflect.TypeOf(msg)
	if tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}
	r.msgs[path] = tp
}

// Check dispatches to the handler registered for the message path.
func (r *Router) Check(ctx bazaar.Context, store bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	h, err := r.handler(tx)
	if err != nil {
		return nil, err
	}
	return h.Check(ctx, store, tx)
}

// Deliver dispatches to the handler registered for the message path.
func (r *Router) Deliver(ctx bazaar.Context, store bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	h, err := r.handler(tx)
	if err != nil {
		return nil, err
	}
	return h.Deliver(ctx, store, tx)
}

func (r *Router) handler(tx bazaar.Tx) (bazaar.Handler, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrInvalidMsg, "request carries no message")
	}
	path := msg.Path()
	h, ok := r.routes[path]
	if !ok {
		return nil, errors.Wrap(ErrNoSuchPath, path)
	}
	return h, nil
}

// NewMsg returns an empty message of the type registered for given path.
func (r *Router) NewMsg(path string) (bazaar.Msg, error) {
	tp, ok := r.msgs[path]
	if !ok {
		return nil, errors.Wrap(ErrNoSuchPath, path)
	}
	msg, ok := reflect.New(tp).Interface().(bazaar.Msg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "%s is not a message", tp)
	}
	return msg, nil
}

// DecodeMsg returns a message of the type registered for given path, loaded
// from its binary form.
func (r *Router) DecodeMsg(path string, raw []byte) (bazaar.Msg, error) {
	msg, err := r.NewMsg(path)
	if err != nil {
		return nil, err
	}
	if err := msg.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "cannot decode %s: %s", path, err)
	}
	return msg, nil
}

// Paths returns all registered message paths in alphabetical order.
func (r *Router) Paths() []string {
	paths := make([]string, 0, len(r.routes))
	for p := range r.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
