package action

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/slimloans/hanami/errors"
	"github.com/slimloans/hanami/session"
	"github.com/slimloans/hanami/view"
)

// Response collects what an action sends back, nothing reaches the client
// until the action finishes
type Response struct {
	status  int
	headers http.Header
	body    bytes.Buffer
	format  string
	charset string

	exposures view.Exposures
	cookies   []*http.Cookie

	redirected bool
	formats    Formats
	cookieOpts CookieOptions
	session    *session.Session
}

func newResponse(config Config, format string, s *session.Session) *Response {
	return &Response{
		status:     http.StatusOK,
		headers:    http.Header{},
		format:     format,
		charset:    config.DefaultCharset,
		exposures:  view.Exposures{},
		formats:    config.Formats,
		cookieOpts: config.Cookies,
		session:    s,
	}
}

func (res *Response) Status() int          { return res.status }
func (res *Response) SetStatus(status int) { res.status = status }
func (res *Response) Header() http.Header  { return res.headers }
func (res *Response) Format() string       { return res.format }
func (res *Response) Body() string         { return res.body.String() }

// SetFormat changes the response format, the Content-Type follows it
func (res *Response) SetFormat(format string) { res.format = format }

func (res *Response) SetCharset(charset string) { res.charset = charset }

// SetBody replaces the body
func (res *Response) SetBody(body string) {
	res.body.Reset()
	res.body.WriteString(body)
}

// Write appends to the body
func (res *Response) Write(p []byte) (int, error) { return res.body.Write(p) }

// JSON encodes v as the body and switches the format to json
func (res *Response) JSON(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.WrapGeneric(err)
	}

	res.format = "json"
	res.SetBody(string(b))
	return nil
}

// Expose hands a value to the view
func (res *Response) Expose(key string, value interface{}) { res.exposures[key] = value }

func (res *Response) Exposures() view.Exposures { return res.exposures }

// Redirect sends the client to location, 302 unless a status is given
func (res *Response) Redirect(location string, status ...int) {
	res.status = http.StatusFound
	if len(status) > 0 {
		res.status = status[0]
	}

	res.headers.Set("Location", location)
	res.redirected = true
}

func (res *Response) Redirected() bool { return res.redirected }

// Cookie sets a cookie using the configured cookie defaults
func (res *Response) Cookie(name, value string) {
	res.cookies = append(res.cookies, res.cookieOpts.cookie(name, value))
}

// SetCookie sets a fully specified cookie
func (res *Response) SetCookie(c *http.Cookie) { res.cookies = append(res.cookies, c) }

// DeleteCookie expires a cookie on the client
func (res *Response) DeleteCookie(name string) {
	c := res.cookieOpts.cookie(name, "")
	c.MaxAge = -1
	res.cookies = append(res.cookies, c)
}

// Session is nil when sessions are disabled
func (res *Response) Session() *session.Session { return res.session }

// Flash is nil when sessions are disabled
func (res *Response) Flash() *session.Flash {
	if res.session == nil {
		return nil
	}
	return res.session.Flash()
}

func (res *Response) contentType() string {
	mimeType := res.formats.MimeFor(res.format)
	if mimeType == "" {
		return ""
	}
	if res.charset == "" {
		return mimeType
	}
	return mimeType + "; charset=" + res.charset
}

func bodiless(status int) bool {
	return status < 200 || status == http.StatusNoContent || status == http.StatusNotModified
}
