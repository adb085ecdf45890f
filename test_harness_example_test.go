package hanami

import (
	"net/http"
	"testing"

	"github.com/slimloans/hanami/action"
	"github.com/slimloans/hanami/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createUser struct{}

func (createUser) Handle(req *action.Request, res *action.Response) error {
	var user struct {
		Name string `param:"name"`
	}
	if err := req.Bind(&user); err != nil {
		return err
	}

	res.SetStatus(http.StatusCreated)
	return res.JSON(map[string]string{"status": "created", "name": user.Name})
}

func usersApp() Options {
	return Options{
		Prepare: func(s *Slice) error {
			show := action.HandlerFunc(func(req *action.Request, res *action.Response) error {
				return res.JSON(map[string]string{"id": req.Param("id"), "name": "John Doe"})
			})

			if err := s.Action("users.show", show); err != nil {
				return err
			}
			return s.Action("users.update", createUser{})
		},
		Routes: func(r *router.Scope) {
			r.Get("/users/:id", "users.show")
			r.Post("/users", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"status":"created"}`))
			})
			r.Put("/users/:id", "users.update")
		},
	}
}

func TestHarnessFluentAPI(t *testing.T) {
	h, err := NewTestHarness(usersApp())
	require.NoError(t, err)

	t.Run("Fluent GET request", func(t *testing.T) {
		h.Get("/users/123").
			WithHeader("Authorization", "Bearer token").
			Send().
			AssertStatus(t, http.StatusOK).
			AssertBodyContains(t, "John Doe").
			AssertBodyContains(t, `"id":"123"`).
			AssertHeader(t, "Content-Type", "application/json; charset=utf-8")
	})

	t.Run("Fluent POST request with JSON", func(t *testing.T) {
		h.Post("/users").
			WithJSON(map[string]string{"name": "Jane"}).
			Send().
			AssertStatus(t, http.StatusCreated).
			AssertBodyContains(t, "created")
	})

	t.Run("Fluent PUT request binding the body", func(t *testing.T) {
		res := h.Put("/users/7").WithJSON(map[string]string{"name": "Jane"}).Send()
		res.AssertStatus(t, http.StatusCreated)

		var body map[string]string
		require.NoError(t, res.Unmarshal(&body))
		assert.Equal(t, "Jane", body["name"])
	})

	t.Run("it should default to the test environment", func(t *testing.T) {
		assert.Equal(t, "test", h.App.Config().Env.Get())
		assert.Equal(t, StateBooted, h.App.State())
	})
}

// Example showing all assertion helpers
func ExampleTestResponse_assertions() {
	h, err := NewTestHarness(usersApp())
	if err != nil {
		panic(err)
	}

	// Chainable assertions
	res := h.Get("/users/1").Send()

	var t testing.T
	res.AssertStatus(&t, 200).
		AssertBodyContains(&t, "John Doe").
		AssertHeader(&t, "X-Request-Id", res.Header().Get("X-Request-Id"))
}
