// Package router defines routes with a small DSL and compiles them onto chi.
//
// Definitions are collected first and compiled by Build, endpoints are string
// identifiers resolved against the slice owning the route.
package router

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/slimloans/hanami/errors"
	"github.com/slimloans/hanami/middleware"
)

// Resolver turns endpoint identifiers into handlers
type Resolver interface {
	Resolve(slice, identifier string) (http.Handler, error)

	// Eager reports if endpoints of slice are resolved during Build
	Eager(slice string) bool
}

// ResolverFunc is an eager Resolver
type ResolverFunc func(slice, identifier string) (http.Handler, error)

func (f ResolverFunc) Resolve(slice, identifier string) (http.Handler, error) {
	return f(slice, identifier)
}

func (ResolverFunc) Eager(string) bool { return true }

// Mount is a slice mounted at a path prefix
type Mount struct {
	Slice  string
	Prefix string
}

type Router struct {
	*Scope

	config Config

	mu     sync.RWMutex
	routes []*Route
	names  map[string]*Route
	mounts []Mount
	errs   []error

	notFound         http.Handler
	methodNotAllowed http.Handler

	sliceRoutes func(slice string) func(*Scope)
}

func New(config Config) *Router {
	r := &Router{config: config, names: map[string]*Route{}}
	r.Scope = &Scope{router: r, prefix: "/"}
	return r
}

// Draw runs fn against the root scope
func (r *Router) Draw(fn func(*Scope)) *Router {
	fn(r.Scope)
	return r
}

func (r *Router) Config() Config { return r.config }

func (r *Router) NotFound(h http.Handler)         { r.notFound = h }
func (r *Router) MethodNotAllowed(h http.Handler) { r.methodNotAllowed = h }

// SliceRoutes looks up the routes a slice defines itself, used when a slice
// is mounted without a block
func (r *Router) SliceRoutes(fn func(slice string) func(*Scope)) { r.sliceRoutes = fn }

// Routes returns the definitions in the order they were added
func (r *Router) Routes() []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]*Route(nil), r.routes...)
}

// Mounts returns the slice mounts
func (r *Router) Mounts() []Mount {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Mount(nil), r.mounts...)
}

func (r *Router) add(rt *Route) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rt.Name != "" {
		if existing, found := r.names[rt.Name]; found {
			r.errs = append(r.errs, ErrorDuplicateRoute.Errorf("route name %s is used by %s %s and %s %s",
				rt.Name, existing.Method, existing.Path, rt.Method, rt.Path))
			return
		}
		r.names[rt.Name] = rt
	}

	r.routes = append(r.routes, rt)
}

func (r *Router) mount(slice, prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.mounts {
		if m.Prefix == prefix && m.Slice != slice {
			r.errs = append(r.errs, ErrorDuplicateSlice.Errorf("slices %s and %s are both mounted at %s", m.Slice, slice, prefix))
			return
		}
		if m.Prefix == prefix {
			return
		}
	}

	r.mounts = append(r.mounts, Mount{Slice: slice, Prefix: prefix})
}

func (r *Router) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errs = append(r.errs, err)
}

// Err returns every definition error collected so far
func (r *Router) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return errors.Join(r.errs...)
}

// Build compiles the routes onto a chi mux. Endpoints of eager slices are
// resolved now, a missing one fails the build with ErrorMissingAction.
func (r *Router) Build(resolver Resolver) (http.Handler, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}

	mux := chi.NewRouter()

	mux.Use(chimw.CleanPath)
	if r.config.StripSlashes {
		mux.Use(chimw.StripSlashes)
	}
	if r.config.Timeout > 0 {
		mux.Use(chimw.Timeout(r.config.Timeout))
	}
	mux.Use(chimw.GetHead)
	mux.Use(r.Scope.middleware...)

	for _, rt := range r.Routes() {
		endpoint, err := r.endpoint(rt, resolver)
		if err != nil {
			return nil, err
		}

		handler := chain(rt.scope.chain(), withRoute(rt, endpoint))

		if err := handle(mux, rt.Method, rt.pattern(), handler); err != nil {
			return nil, ErrorInvalidRoute.Errorf("%s %s: %v", rt.Method, rt.Path, err)
		}
	}

	if r.notFound != nil {
		mux.NotFound(r.notFound.ServeHTTP)
	}
	if r.methodNotAllowed != nil {
		mux.MethodNotAllowed(r.methodNotAllowed.ServeHTTP)
	}

	return mux, nil
}

// handle registers on chi turning its panics on bad patterns into errors
func handle(mux chi.Router, method, pattern string, h http.Handler) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()

	mux.Method(method, pattern, h)
	return nil
}

func (r *Router) endpoint(rt *Route, resolver Resolver) (http.Handler, error) {
	switch {
	case rt.handler != nil:
		return rt.handler, nil
	case rt.redirectTo != "":
		return http.RedirectHandler(rt.redirectTo, rt.redirectCode), nil
	case resolver == nil:
		return nil, ErrorMissingAction.Errorf("no resolver for %s %s to %s", rt.Method, rt.Path, rt.To)
	case resolver.Eager(rt.Slice):
		h, err := resolver.Resolve(rt.Slice, rt.To)
		if err != nil {
			return nil, errors.WrapWithStatus(ErrorMissingAction, err, http.StatusInternalServerError)
		}
		return h, nil
	}

	return &lazyEndpoint{route: rt, resolver: resolver}, nil
}

// lazyEndpoint resolves its handler on the first request
type lazyEndpoint struct {
	route    *Route
	resolver Resolver

	mu      sync.Mutex
	handler http.Handler
}

func (le *lazyEndpoint) resolve() (http.Handler, error) {
	le.mu.Lock()
	defer le.mu.Unlock()

	if le.handler != nil {
		return le.handler, nil
	}

	h, err := le.resolver.Resolve(le.route.Slice, le.route.To)
	if err != nil {
		return nil, errors.WrapWithStatus(ErrorMissingAction, err, http.StatusInternalServerError)
	}

	le.handler = h
	return h, nil
}

func (le *lazyEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, err := le.resolve()
	if err != nil {
		middleware.Logger(r.Context()).WithError(err).Errorf("unable to resolve %s", le.route.To)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.ServeHTTP(w, r)
}
