package router

import (
	"fmt"
	"net/http"
)

// Route is a single path pattern pointing at an endpoint
type Route struct {
	Method string
	Path   string
	Name   string
	Slice  string

	// To is the endpoint identifier ("books.show"), empty for inline handlers
	To string

	handler      http.Handler
	redirectTo   string
	redirectCode int
	constraints  map[string]string

	tokens []*token
	scope  *Scope
}

// Endpoint describes what the route points at
func (rt *Route) Endpoint() string {
	switch {
	case rt.To != "":
		return rt.To
	case rt.redirectTo != "":
		return fmt.Sprintf("redirect(%d) %s", rt.redirectCode, rt.redirectTo)
	case rt.handler != nil:
		return fmt.Sprintf("%T", rt.handler)
	}
	return ""
}

func (rt *Route) pattern() string { return chiPattern(rt.tokens) }

type RouteOption func(*Route)

// As names the route for path helpers, the name is prefixed by enclosing scopes
func As(name string) RouteOption {
	return func(rt *Route) { rt.Name = name }
}

// Constraints restricts params to the given regular expressions
func Constraints(constraints map[string]string) RouteOption {
	return func(rt *Route) { rt.constraints = constraints }
}

// Code sets the status of a redirect, 301 by default
func Code(status int) RouteOption {
	return func(rt *Route) { rt.redirectCode = status }
}
