// Package action turns a handler into an http.Handler: params, format
// negotiation, CSRF checks, callbacks, error statuses and auto rendering of
// the paired view.
package action

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/slimloans/hanami/errors"
	"github.com/slimloans/hanami/middleware"
	"github.com/slimloans/hanami/session"
	"github.com/slimloans/hanami/view"
)

const (
	CSRFParam  = "_csrf_token"
	CSRFHeader = "X-CSRF-Token"
)

// Handler is the business logic of an action
type Handler interface {
	Handle(req *Request, res *Response) error
}

// HandlerFunc adapts a function to a Handler
type HandlerFunc func(req *Request, res *Response) error

func (f HandlerFunc) Handle(req *Request, res *Response) error { return f(req, res) }

// BeforeHandler runs before Handle, an error skips Handle
type BeforeHandler interface {
	Before(req *Request, res *Response) error
}

// AfterHandler runs after a successful Handle
type AfterHandler interface {
	After(req *Request, res *Response) error
}

// FormatAcceptor overrides the accepted formats of the configuration
type FormatAcceptor interface {
	AcceptedFormats() []string
}

// CSRFVerifier lets a handler skip the CSRF check for some requests
type CSRFVerifier interface {
	VerifyCSRFToken(req *Request) bool
}

type Callback func(req *Request, res *Response) error

type Action struct {
	name    string
	handler Handler
	config  Config

	view        view.View
	viewContext *view.Context
	routes      view.Routes
	logger      *logrus.Entry

	before []Callback
	after  []Callback
}

type Option func(*Action)

func WithName(name string) Option              { return func(a *Action) { a.name = name } }
func WithConfig(config Config) Option          { return func(a *Action) { a.config = config } }
func WithView(v view.View) Option              { return func(a *Action) { a.view = v } }
func WithViewContext(ctx *view.Context) Option { return func(a *Action) { a.viewContext = ctx } }
func WithRoutes(routes view.Routes) Option     { return func(a *Action) { a.routes = routes } }
func WithLogger(logger *logrus.Entry) Option   { return func(a *Action) { a.logger = logger } }
func Before(callbacks ...Callback) Option      { return func(a *Action) { a.before = append(a.before, callbacks...) } }
func After(callbacks ...Callback) Option       { return func(a *Action) { a.after = append(a.after, callbacks...) } }

func New(handler Handler, opts ...Option) *Action {
	a := &Action{handler: handler, config: DefaultConfig()}

	for _, opt := range opts {
		opt(a)
	}

	if a.viewContext == nil && a.view != nil {
		a.viewContext = view.NewContext("", view.DefaultConfig(), a.routes)
	}

	return a
}

func (a *Action) Name() string               { return a.name }
func (a *Action) Handler() Handler           { return a.handler }
func (a *Action) Config() Config             { return a.config }
func (a *Action) View() view.View            { return a.view }
func (a *Action) ViewContext() *view.Context { return a.viewContext }
func (a *Action) Routes() view.Routes        { return a.routes }

func (a *Action) log(r *http.Request) *logrus.Entry {
	if a.logger != nil {
		return a.logger.WithField("action", a.name)
	}
	return middleware.Logger(r.Context()).WithField("action", a.name)
}

func (a *Action) acceptedFormats() []string {
	if fa, ok := a.handler.(FormatAcceptor); ok {
		return fa.AcceptedFormats()
	}
	return a.config.AcceptedFormats
}

func (a *Action) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := newRequest(r, a.config.Formats, a.config.DefaultRequestFormat)
	if err != nil {
		res := newResponse(a.config, a.config.DefaultResponseFormat, session.FromContext(r.Context()))
		a.fail(r, res, err)
		a.write(w, r, res)
		return
	}

	format, err := a.negotiate(r)
	res := newResponse(a.config, format, req.Session())

	if err == nil {
		err = a.call(req, res)
	}

	if err == nil {
		err = a.render(req, res)
	}

	if err != nil {
		a.fail(r, res, err)
	}

	a.write(w, r, res)
}

// negotiate checks the request content type and picks the response format
func (a *Action) negotiate(r *http.Request) (string, error) {
	accepted := a.acceptedFormats()
	formats := a.config.Formats

	if len(accepted) > 0 && r.ContentLength != 0 {
		if ct := r.Header.Get("Content-Type"); ct != "" && !contains(accepted, formats.FormatFor(ct)) {
			return a.config.DefaultResponseFormat, ErrorUnsupportedMedia.Errorf("content type %s is not accepted", ct)
		}
	}

	candidates := accepted
	if len(candidates) == 0 {
		candidates = append([]string{a.config.DefaultResponseFormat}, formats.names()...)
	}

	format, ok := formats.negotiate(r.Header.Get("Accept"), candidates)
	if !ok {
		if len(accepted) > 0 {
			return a.config.DefaultResponseFormat, ErrorNotAcceptable.Errorf("none of %s is acceptable", strings.Join(accepted, ", "))
		}
		return a.config.DefaultResponseFormat, nil
	}

	return format, nil
}

func (a *Action) call(req *Request, res *Response) error {
	if err := a.verifyCSRF(req); err != nil {
		return err
	}

	for _, cb := range a.before {
		if err := cb(req, res); err != nil {
			return err
		}
	}

	if bh, ok := a.handler.(BeforeHandler); ok {
		if err := bh.Before(req, res); err != nil {
			return err
		}
	}

	if err := a.handler.Handle(req, res); err != nil {
		return err
	}

	if ah, ok := a.handler.(AfterHandler); ok {
		if err := ah.After(req, res); err != nil {
			return err
		}
	}

	for _, cb := range a.after {
		if err := cb(req, res); err != nil {
			return err
		}
	}

	return nil
}

func (a *Action) verifyCSRF(req *Request) error {
	if !a.config.CSRFProtection {
		return nil
	}

	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return nil
	}

	if v, ok := a.handler.(CSRFVerifier); ok && !v.VerifyCSRFToken(req) {
		return nil
	}

	s := req.Session()
	if s == nil {
		return ErrorMissingSession.Errorf("CSRF protection needs sessions to be enabled")
	}

	token := req.Header.Get(CSRFHeader)
	if token == "" {
		token = req.Param(CSRFParam)
	}

	if !session.ValidCSRFToken(s, token) {
		return ErrorInvalidCSRFToken.Errorf("invalid CSRF token for %s %s", req.Method, req.URL.Path)
	}
	return nil
}

// render fills an empty body with the paired view
func (a *Action) render(req *Request, res *Response) error {
	if a.view == nil || res.body.Len() > 0 || res.redirected || bodiless(res.status) || req.Method == http.MethodHead {
		return nil
	}

	var (
		flash view.Flash
		vals  map[string]interface{}
		token string
	)

	if s := req.Session(); s != nil {
		flash = s.Flash()
		vals = s.Values()
		if a.config.CSRFProtection {
			token = session.CSRFToken(s)
		}
	}

	ctx := a.viewContext.WithRequest(req.Request, flash, vals, token)

	out, err := a.view.Render(ctx, res.exposures)
	if err != nil {
		return errors.Wrap(ErrorViewRender, err)
	}

	res.SetBody(out)
	return nil
}

// fail maps err onto the response status
func (a *Action) fail(r *http.Request, res *Response, err error) {
	var halt *HaltError
	if errors.As(err, &halt) {
		res.status = halt.Status
		res.SetBody(halt.Body)
		return
	}

	status := 0
	for _, handled := range a.config.HandledExceptions {
		if errors.Is(err, handled.Err) {
			status = handled.Status
			break
		}
	}

	if status == 0 {
		status = errors.StatusOf(err)
	}

	if status == 0 {
		if !a.config.HandleExceptions {
			panic(err)
		}
		status = http.StatusInternalServerError
	}

	entry := a.log(r).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("action failed")
	} else {
		entry.Debug("action halted")
	}

	res.status = status
	res.SetBody(http.StatusText(status))
}

func (a *Action) write(w http.ResponseWriter, r *http.Request, res *Response) {
	header := w.Header()

	for k, v := range a.config.DefaultHeaders {
		if header.Get(k) == "" && res.headers.Get(k) == "" {
			header.Set(k, v)
		}
	}

	for k, v := range res.headers {
		header[k] = v
	}

	if res.format == "html" && len(a.config.ContentSecurityPolicy) > 0 && header.Get("Content-Security-Policy") == "" {
		header.Set("Content-Security-Policy", a.config.ContentSecurityPolicy.String())
	}

	for _, c := range res.cookies {
		http.SetCookie(w, c)
	}

	if bodiless(res.status) {
		w.WriteHeader(res.status)
		return
	}

	if ct := res.contentType(); ct != "" && header.Get("Content-Type") == "" {
		header.Set("Content-Type", ct)
	}

	w.WriteHeader(res.status)

	if r.Method != http.MethodHead {
		w.Write(res.body.Bytes())
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
