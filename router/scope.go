package router

import (
	"net/http"
	"strings"
)

// Scope is a block of routes sharing a path prefix, name prefix, slice and
// middleware. The router itself is the root scope.
type Scope struct {
	router     *Router
	parent     *Scope
	prefix     string
	as         string
	slice      string
	middleware []func(http.Handler) http.Handler
}

func (s *Scope) Prefix() string    { return s.prefix }
func (s *Scope) SliceName() string { return s.slice }

// Use adds middleware wrapping every route of the scope and its children
func (s *Scope) Use(middleware ...func(http.Handler) http.Handler) *Scope {
	s.middleware = append(s.middleware, middleware...)
	return s
}

// Root routes GET / of the scope, named "root"
func (s *Scope) Root(to interface{}, opts ...RouteOption) *Scope {
	return s.add(http.MethodGet, "/", to, append([]RouteOption{As("root")}, opts...)...)
}

func (s *Scope) Get(path string, to interface{}, opts ...RouteOption) *Scope {
	return s.add(http.MethodGet, path, to, opts...)
}

func (s *Scope) Post(path string, to interface{}, opts ...RouteOption) *Scope {
	return s.add(http.MethodPost, path, to, opts...)
}

func (s *Scope) Put(path string, to interface{}, opts ...RouteOption) *Scope {
	return s.add(http.MethodPut, path, to, opts...)
}

func (s *Scope) Patch(path string, to interface{}, opts ...RouteOption) *Scope {
	return s.add(http.MethodPatch, path, to, opts...)
}

func (s *Scope) Delete(path string, to interface{}, opts ...RouteOption) *Scope {
	return s.add(http.MethodDelete, path, to, opts...)
}

func (s *Scope) Options(path string, to interface{}, opts ...RouteOption) *Scope {
	return s.add(http.MethodOptions, path, to, opts...)
}

func (s *Scope) Trace(path string, to interface{}, opts ...RouteOption) *Scope {
	return s.add(http.MethodTrace, path, to, opts...)
}

// Redirect answers GET path with a redirect to location
func (s *Scope) Redirect(path, location string, opts ...RouteOption) *Scope {
	rt := &Route{
		Method:       http.MethodGet,
		redirectTo:   location,
		redirectCode: http.StatusMovedPermanently,
	}
	return s.define(rt, path, opts...)
}

// Scope groups routes under prefix, route names get the prefix too
func (s *Scope) Scope(prefix string, fn func(*Scope)) *Scope {
	child := s.child(prefix)
	child.as = joinName(s.as, namePrefix(prefix))
	fn(child)
	return s
}

// Slice mounts the routes defined in fn at the given prefix, their endpoints
// resolve against the named slice. A nil fn draws the routes the slice
// defines itself, see Router.SliceRoutes.
func (s *Scope) Slice(name, at string, fn func(*Scope)) *Scope {
	child := s.child(at)
	child.slice = name
	child.as = joinName(s.as, name[strings.LastIndex(name, ".")+1:])

	s.router.mount(name, child.prefix)

	if fn == nil && s.router.sliceRoutes != nil {
		fn = s.router.sliceRoutes(name)
	}
	if fn != nil {
		fn(child)
	}
	return s
}

func (s *Scope) child(prefix string) *Scope {
	return &Scope{
		router: s.router,
		parent: s,
		prefix: joinPath(s.prefix, prefix),
		as:     s.as,
		slice:  s.slice,
	}
}

func (s *Scope) add(method, path string, to interface{}, opts ...RouteOption) *Scope {
	rt := &Route{Method: method}

	switch h := to.(type) {
	case string:
		rt.To = h
	case http.Handler:
		rt.handler = h
	case func(http.ResponseWriter, *http.Request):
		rt.handler = http.HandlerFunc(h)
	default:
		s.router.fail(ErrorInvalidRoute.Errorf("%s %s: unsupported endpoint %T", method, joinPath(s.prefix, path), to))
		return s
	}

	return s.define(rt, path, opts...)
}

func (s *Scope) define(rt *Route, path string, opts ...RouteOption) *Scope {
	for _, opt := range opts {
		opt(rt)
	}

	rt.Path = joinPath(s.prefix, path)
	rt.Slice = s.slice
	rt.scope = s

	if rt.Name != "" {
		rt.Name = joinName(s.as, rt.Name)
	}

	tokens, err := tokenize(rt.Path, rt.constraints)
	if err != nil {
		s.router.fail(err)
		return s
	}
	rt.tokens = tokens

	s.router.add(rt)
	return s
}

// chain collects middleware from the outermost scope below the root inwards
func (s *Scope) chain() []func(http.Handler) http.Handler {
	middleware := []func(http.Handler) http.Handler{}

	for cur := s; cur != nil && cur.parent != nil; cur = cur.parent {
		middleware = append(append([]func(http.Handler) http.Handler{}, cur.middleware...), middleware...)
	}

	return middleware
}

func joinName(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	}
	return prefix + "_" + name
}

func chain(middleware []func(http.Handler) http.Handler, endpoint http.Handler) http.Handler {
	if len(middleware) == 0 {
		return endpoint
	}

	h := middleware[len(middleware)-1](endpoint)
	for i := len(middleware) - 2; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}
