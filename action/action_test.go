package action

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slimloans/hanami/session"
	"github.com/slimloans/hanami/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBookMissing = fmt.Errorf("book missing")

type jsonOnly struct{}

func (jsonOnly) AcceptedFormats() []string { return []string{"json"} }

func (jsonOnly) Handle(req *Request, res *Response) error {
	return res.JSON(map[string]string{"title": req.Param("title")})
}

type createBook struct {
	Title string   `param:"title"`
	Pages int      `param:"pages"`
	Tags  []string `param:"tags"`
}

func (b createBook) Validate() error {
	if b.Title == "" {
		return fmt.Errorf("title is missing")
	}
	return nil
}

type callbackHandler struct {
	log *[]string
}

func (h callbackHandler) Before(req *Request, res *Response) error {
	*h.log = append(*h.log, "before")
	return nil
}

func (h callbackHandler) Handle(req *Request, res *Response) error {
	*h.log = append(*h.log, "handle")
	return nil
}

func (h callbackHandler) After(req *Request, res *Response) error {
	*h.log = append(*h.log, "after")
	return nil
}

func serve(h http.Handler, method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAction(t *testing.T) {
	t.Run("it should write the body with default headers", func(t *testing.T) {
		a := New(HandlerFunc(func(req *Request, res *Response) error {
			res.SetBody("hello " + req.Param("name"))
			return nil
		}))

		rec := serve(a, "GET", "/?name=world", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hello world", rec.Body.String())
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
	})

	t.Run("it should let handlers override default headers", func(t *testing.T) {
		a := New(HandlerFunc(func(req *Request, res *Response) error {
			res.Header().Set("X-Frame-Options", "SAMEORIGIN")
			return nil
		}))

		rec := serve(a, "GET", "/", "", nil)
		assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	})

	t.Run("it should skip the body for HEAD requests", func(t *testing.T) {
		a := New(HandlerFunc(func(req *Request, res *Response) error {
			res.SetBody("content")
			return nil
		}))

		rec := serve(a, "HEAD", "/", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("it should run callbacks around the handler", func(t *testing.T) {
		var log []string

		a := New(callbackHandler{log: &log},
			Before(func(req *Request, res *Response) error { log = append(log, "option before"); return nil }),
			After(func(req *Request, res *Response) error { log = append(log, "option after"); return nil }),
		)

		serve(a, "GET", "/", "", nil)
		assert.Equal(t, []string{"option before", "before", "handle", "after", "option after"}, log)
	})

	t.Run("it should stop at a failing before callback", func(t *testing.T) {
		called := false
		a := New(HandlerFunc(func(req *Request, res *Response) error { called = true; return nil }),
			Before(func(req *Request, res *Response) error { return Halt(http.StatusUnauthorized) }),
		)

		rec := serve(a, "GET", "/", "", nil)
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", rec.Body.String())
	})
}

func TestFormats(t *testing.T) {
	a := New(jsonOnly{})

	var examples = []struct {
		name    string
		method  string
		body    string
		headers map[string]string
		status  int
	}{
		{"it should accept matching Accept headers", "GET", "", map[string]string{"Accept": "application/json"}, 200},
		{"it should accept wildcards", "GET", "", map[string]string{"Accept": "text/html;q=0.9, */*;q=0.1"}, 200},
		{"it should accept missing Accept headers", "GET", "", nil, 200},
		{"it should reject unacceptable formats", "GET", "", map[string]string{"Accept": "text/html"}, 406},
		{"it should accept json bodies", "POST", `{"title":"Dune"}`, map[string]string{"Content-Type": "application/json"}, 200},
		{"it should reject unsupported bodies", "POST", "<book/>", map[string]string{"Content-Type": "application/xml"}, 415},
	}

	for _, example := range examples {
		t.Run(example.name, func(t *testing.T) {
			rec := serve(a, example.method, "/", example.body, example.headers)
			assert.Equal(t, example.status, rec.Code)
		})
	}

	t.Run("it should respond with the json content type", func(t *testing.T) {
		rec := serve(a, "POST", "/", `{"title":"Dune"}`, map[string]string{"Content-Type": "application/json"})

		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"title":"Dune"}`, rec.Body.String())
		assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	})
}

func TestErrors(t *testing.T) {
	t.Run("it should map handled exceptions", func(t *testing.T) {
		config := DefaultConfig()
		config.HandledExceptions = []HandledError{{Err: errBookMissing, Status: http.StatusNotFound}}

		a := New(HandlerFunc(func(req *Request, res *Response) error {
			return fmt.Errorf("show: %w", errBookMissing)
		}), WithConfig(config))

		rec := serve(a, "GET", "/", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not Found", rec.Body.String())
	})

	t.Run("it should respond 500 to unknown errors", func(t *testing.T) {
		a := New(HandlerFunc(func(req *Request, res *Response) error { return fmt.Errorf("boom") }))

		rec := serve(a, "GET", "/", "", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("it should panic when exceptions are not handled", func(t *testing.T) {
		config := DefaultConfig()
		config.HandleExceptions = false

		a := New(HandlerFunc(func(req *Request, res *Response) error { return fmt.Errorf("boom") }), WithConfig(config))

		assert.Panics(t, func() { serve(a, "GET", "/", "", nil) })
	})

	t.Run("it should halt with a custom body", func(t *testing.T) {
		a := New(HandlerFunc(func(req *Request, res *Response) error { return Halt(http.StatusPaymentRequired, "pay up") }))

		rec := serve(a, "GET", "/", "", nil)
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		assert.Equal(t, "pay up", rec.Body.String())
	})
}

func TestBind(t *testing.T) {
	a := New(HandlerFunc(func(req *Request, res *Response) error {
		var book createBook
		if err := req.Bind(&book); err != nil {
			return err
		}
		return res.JSON(book)
	}))

	t.Run("it should decode form params", func(t *testing.T) {
		rec := serve(a, "POST", "/", "title=Dune&pages=412&tags=scifi,classic",
			map[string]string{"Content-Type": "application/x-www-form-urlencoded"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"Title":"Dune","Pages":412,"Tags":["scifi","classic"]}`, rec.Body.String())
	})

	t.Run("it should respond 422 when validation fails", func(t *testing.T) {
		rec := serve(a, "POST", "/", "pages=12", map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("it should respond 400 to malformed params", func(t *testing.T) {
		rec := serve(a, "POST", "/", "title=Dune&pages=many", map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestView(t *testing.T) {
	show := view.Func(func(ctx *view.Context, exposures view.Exposures) (string, error) {
		return fmt.Sprintf("<h1>%v</h1>", exposures["title"]), nil
	})

	t.Run("it should render the paired view when the body is empty", func(t *testing.T) {
		a := New(HandlerFunc(func(req *Request, res *Response) error {
			res.Expose("title", "Dune")
			return nil
		}), WithView(show))

		rec := serve(a, "GET", "/", "", nil)
		assert.Equal(t, "<h1>Dune</h1>", rec.Body.String())
	})

	t.Run("it should not render when the handler wrote a body", func(t *testing.T) {
		a := New(HandlerFunc(func(req *Request, res *Response) error {
			res.SetBody("custom")
			return nil
		}), WithView(show))

		rec := serve(a, "GET", "/", "", nil)
		assert.Equal(t, "custom", rec.Body.String())
	})

	t.Run("it should not render redirects", func(t *testing.T) {
		a := New(HandlerFunc(func(req *Request, res *Response) error {
			res.Redirect("/books")
			return nil
		}), WithView(show))

		rec := serve(a, "GET", "/", "", nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/books", rec.Header().Get("Location"))
		assert.Empty(t, rec.Body.String())
	})

	t.Run("it should hand the slice context to the view", func(t *testing.T) {
		ctx := view.NewContext("admin", view.DefaultConfig(), nil).Set("app_name", "bookshelf")

		a := New(HandlerFunc(func(req *Request, res *Response) error { return nil }),
			WithViewContext(ctx),
			WithView(view.Func(func(ctx *view.Context, exposures view.Exposures) (string, error) {
				name, _ := ctx.Get("app_name")
				return fmt.Sprintf("%s %s %s", ctx.Slice, name, ctx.Request.URL.Path), nil
			})),
		)

		rec := serve(a, "GET", "/admin", "", nil)
		assert.Equal(t, "admin bookshelf /admin", rec.Body.String())
	})

	t.Run("it should respond 500 when the view fails", func(t *testing.T) {
		a := New(HandlerFunc(func(req *Request, res *Response) error { return nil }),
			WithView(view.Func(func(ctx *view.Context, exposures view.Exposures) (string, error) {
				return "", fmt.Errorf("template missing")
			})),
		)

		rec := serve(a, "GET", "/", "", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCookies(t *testing.T) {
	a := New(HandlerFunc(func(req *Request, res *Response) error {
		res.Cookie("theme", "dark")
		res.DeleteCookie("legacy")
		return nil
	}))

	rec := serve(a, "GET", "/", "", nil)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	assert.Equal(t, "theme", cookies[0].Name)
	assert.Equal(t, "dark", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "/", cookies[0].Path)

	assert.Equal(t, "legacy", cookies[1].Name)
	assert.True(t, cookies[1].MaxAge < 0)
}

func TestCSRF(t *testing.T) {
	config := DefaultConfig()
	config.CSRFProtection = true

	store := session.NewCookieStore("secret", session.DefaultOptions())

	form := HandlerFunc(func(req *Request, res *Response) error {
		if req.Method == http.MethodGet {
			res.SetBody(session.CSRFToken(req.Session()))
			return nil
		}
		res.SetBody("created")
		return nil
	})

	protected := session.Middleware(store)(New(form, WithConfig(config)))

	get := serve(protected, "GET", "/books/new", "", nil)
	require.Equal(t, http.StatusOK, get.Code)

	token := get.Body.String()
	cookies := get.Result().Cookies()
	require.Len(t, cookies, 1)

	post := func(headers map[string]string, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/books", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		req.AddCookie(cookies[0])

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		return rec
	}

	t.Run("it should accept the token as a param", func(t *testing.T) {
		rec := post(nil, "_csrf_token="+token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "created", rec.Body.String())
	})

	t.Run("it should accept the token as a header", func(t *testing.T) {
		rec := post(map[string]string{CSRFHeader: token}, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("it should reject invalid tokens", func(t *testing.T) {
		rec := post(nil, "_csrf_token=forged")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("it should fail without sessions", func(t *testing.T) {
		rec := serve(New(form, WithConfig(config)), "POST", "/books", "", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
