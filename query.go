package bazaar

import (
	"fmt"
	"sort"
	"strings"
)

// Query modifiers. The default looks up a single key, PrefixQueryMod
// returns every entry whose key starts with the data.
const (
	KeyQueryMod    = ""
	PrefixQueryMod = "prefix"
)

// Model is one key/value pair of a query result.
type Model struct {
	Key   []byte
	Value []byte
}

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}

// QueryHandler answers queries against a read only view of the state.
type QueryHandler interface {
	Query(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error)
}

// QueryHandlerFunc adapts a function to QueryHandler.
type QueryHandlerFunc func(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error)

func (f QueryHandlerFunc) Query(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error) {
	return f(db, mod, data)
}

// QueryRegister adds the query handlers of one extension.
type QueryRegister func(QueryRouter)

// QueryRouter maps query paths such as "/listings" or "/items/holder" to
// their handlers.
type QueryRouter struct {
	routes map[string]QueryHandler
}

func NewQueryRouter() QueryRouter {
	return QueryRouter{routes: make(map[string]QueryHandler)}
}

// RegisterAll registers a number of QueryRegister at once
func (r QueryRouter) RegisterAll(qr ...QueryRegister) {
	for _, q := range qr {
		q(r)
	}
}

// Register binds h to path. It panics if the path does not start with a
// slash or is already taken.
func (r QueryRouter) Register(path string, h QueryHandler) {
	if !strings.HasPrefix(path, "/") || strings.Contains(path, "?") {
		panic(fmt.Sprintf("invalid query path %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("Re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the handler bound to path or nil.
func (r QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}

// Paths returns all registered paths in alphabetical order.
func (r QueryRouter) Paths() []string {
	paths := make([]string, 0, len(r.routes))
	for p := range r.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ParseQueryPath splits "/listings/seller?prefix" into the route and the
// query modifier.
func ParseQueryPath(path string) (route, mod string) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, KeyQueryMod
}
