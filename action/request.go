package action

import (
	"net/http"

	"github.com/slimloans/hanami/middleware"
	"github.com/slimloans/hanami/session"
)

// Request wraps the http request an action handles
type Request struct {
	*http.Request

	params  Params
	format  string
	session *session.Session
}

func newRequest(r *http.Request, formats Formats, defaultFormat string) (*Request, error) {
	params, err := parseParams(r)
	if err != nil {
		return nil, err
	}

	format := defaultFormat
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if f := formats.FormatFor(ct); f != "" {
			format = f
		}
	}

	return &Request{
		Request: r,
		params:  params,
		format:  format,
		session: session.FromContext(r.Context()),
	}, nil
}

func (r *Request) Params() Params { return r.params }

// Param returns a top level param as string
func (r *Request) Param(key string) string { return r.params.String(key) }

// Bind decodes the params into dst, see Params.Bind
func (r *Request) Bind(dst interface{}) error { return r.params.Bind(dst) }

// Format is the format of the request body, the default request format
// when it has none
func (r *Request) Format() string { return r.format }

// Session is nil when sessions are disabled
func (r *Request) Session() *session.Session { return r.session }

// Flash is nil when sessions are disabled
func (r *Request) Flash() *session.Flash {
	if r.session == nil {
		return nil
	}
	return r.session.Flash()
}

// ID returns the request id assigned by the request id middleware
func (r *Request) ID() string { return middleware.RequestIDFromRequest(r.Request) }

// CookieValue returns a cookie value, empty when missing
func (r *Request) CookieValue(name string) string {
	c, err := r.Request.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
