package view

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextWithRequest(t *testing.T) {
	base := NewContext("main", DefaultConfig(), nil).Set("title", "Bookshelf")
	req := httptest.NewRequest("GET", "/books", nil)

	ctx := base.WithRequest(req, nil, map[string]interface{}{"user_id": 1}, "token")
	ctx.Set("page", 2)

	t.Run("it should carry request data on the copy", func(t *testing.T) {
		assert.Equal(t, req, ctx.Request)
		assert.Equal(t, "token", ctx.CSRFToken)
		assert.Equal(t, "main", ctx.Slice)
		assert.Equal(t, "app", ctx.Config.Layout)
	})

	t.Run("it should not leak values back into the shared context", func(t *testing.T) {
		_, found := base.Get("page")
		assert.False(t, found)

		title, found := ctx.Get("title")
		assert.True(t, found)
		assert.Equal(t, "Bookshelf", title)
		assert.Nil(t, base.Request)
	})
}

func TestFunc(t *testing.T) {
	v := Func(func(ctx *Context, exposures Exposures) (string, error) {
		return fmt.Sprintf("%s:%v", ctx.Slice, exposures["book"]), nil
	})

	out, err := v.Render(NewContext("admin", DefaultConfig(), nil), Exposures{"book": "Dune"})
	assert.NoError(t, err)
	assert.Equal(t, "admin:Dune", out)
}
