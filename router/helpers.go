package router

import (
	"net/url"
	"sort"
	"strings"

	"github.com/slimloans/hanami/utils"
	"github.com/spf13/cast"
)

// Route returns the named route
func (r *Router) Route(name string) (*Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, found := r.names[name]
	return rt, found
}

// Path builds the path of a named route, params not used by the pattern
// become the query string
func (r *Router) Path(name string, params map[string]interface{}) (string, error) {
	rt, found := r.Route(name)
	if !found {
		return "", ErrorUnknownRoute.Errorf("no route named %s", name)
	}

	used := make(map[string]bool, len(rt.tokens))
	parts := make([]string, 0, len(rt.tokens))

	for _, t := range rt.tokens {
		if !t.isDynamic {
			parts = append(parts, t.value)
			continue
		}

		raw, ok := params[t.value]
		if !ok {
			return "", ErrorMissingParam.Errorf("route %s needs param %s", name, t.value)
		}

		value, err := cast.ToStringE(raw)
		if err != nil {
			return "", ErrorInvalidParam.Errorf("route %s param %s: %v", name, t.value, err)
		}

		if !t.match(value) {
			return "", ErrorInvalidParam.Errorf("route %s param %s=%q does not match %s", name, t.value, value, t.matcher)
		}

		if !t.isSplat {
			value = url.PathEscape(value)
		}

		used[t.value] = true
		parts = append(parts, value)
	}

	path := "/" + strings.Join(parts, "/")

	query := url.Values{}
	for k, v := range params {
		if used[k] {
			continue
		}
		query.Set(k, cast.ToString(v))
	}

	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	return path, nil
}

// URL is Path prefixed with the configured base URL
func (r *Router) URL(name string, params map[string]interface{}) (string, error) {
	path, err := r.Path(name, params)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(r.config.BaseURL, "/") + path, nil
}

// SliceFor returns the slice serving path, the longest mounted prefix wins
// and the empty name stands for the app
func (r *Router) SliceFor(path string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slice, longest := "", -1
	for _, m := range r.mounts {
		if m.Prefix != "/" && !utils.HasPrefixSegment(path, m.Prefix, "/") {
			continue
		}
		if len(m.Prefix) > longest {
			slice, longest = m.Slice, len(m.Prefix)
		}
	}
	return slice
}

// RouteInfo is the printable form of a route
type RouteInfo struct {
	Method string `json:"method" yaml:"method"`
	Path   string `json:"path" yaml:"path"`
	To     string `json:"to" yaml:"to"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Slice  string `json:"slice,omitempty" yaml:"slice,omitempty"`
}

// Inspect lists routes sorted by path then method
func (r *Router) Inspect() []RouteInfo {
	routes := r.Routes()
	infos := make([]RouteInfo, 0, len(routes))

	for _, rt := range routes {
		infos = append(infos, RouteInfo{
			Method: rt.Method,
			Path:   rt.Path,
			To:     rt.Endpoint(),
			Name:   rt.Name,
			Slice:  rt.Slice,
		})
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if infos[i].Path == infos[j].Path {
			return infos[i].Method < infos[j].Method
		}
		return infos[i].Path < infos[j].Path
	})

	return infos
}
