package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type contextKey struct{}

type match struct {
	route  *Route
	params map[string]string
}

func withRoute(rt *Route, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := map[string]string{}

		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			for i, key := range rctx.URLParams.Keys {
				if key == "*" {
					key = splatName(rt)
				}
				params[key] = rctx.URLParams.Values[i]
			}
		}

		ctx := context.WithValue(r.Context(), contextKey{}, &match{route: rt, params: params})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func splatName(rt *Route) string {
	if n := len(rt.tokens); n > 0 && rt.tokens[n-1].isSplat {
		return rt.tokens[n-1].value
	}
	return "*"
}

// Params returns the path params of the matched route
func Params(r *http.Request) map[string]string {
	if m, ok := r.Context().Value(contextKey{}).(*match); ok {
		return m.params
	}
	return map[string]string{}
}

// Param returns one path param
func Param(r *http.Request, name string) string {
	return Params(r)[name]
}

// Matched returns the route serving the request, nil outside of a route
func Matched(ctx context.Context) *Route {
	if m, ok := ctx.Value(contextKey{}).(*match); ok {
		return m.route
	}
	return nil
}
