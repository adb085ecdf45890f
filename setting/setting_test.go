package setting

import (
	stderrors "errors"
	"testing"

	"github.com/slimloans/hanami/errors"
	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	t.Run("it should return the default when unset", func(t *testing.T) {
		v := New(NewLock("app"), "layout", "app")

		assert.Equal(t, "app", v.Get())
		assert.False(t, v.IsSet())
	})

	t.Run("it should cascade through parents until set", func(t *testing.T) {
		app := New(NewLock("app"), "formats", []string{"html"})
		slice := app.Inherit(NewLock("admin"))
		nested := slice.Inherit(NewLock("admin.billing"))

		assert.Equal(t, []string{"html"}, nested.Get())

		assert.NoError(t, app.Set([]string{"json"}))
		assert.Equal(t, []string{"json"}, nested.Get())

		assert.NoError(t, slice.Set([]string{"csv"}))
		assert.Equal(t, []string{"csv"}, nested.Get())
		assert.Equal(t, []string{"json"}, app.Get())
	})

	t.Run("it should refuse mutation once frozen", func(t *testing.T) {
		lock := NewLock("app")
		v := New(lock, "root", "")
		lock.Freeze()

		err := v.Set("/srv")
		assert.True(t, stderrors.Is(err, errors.ErrorFrozen))
		assert.True(t, stderrors.Is(v.Reset(), errors.ErrorFrozen))
		assert.Panics(t, func() { v.MustSet("/srv") })
		assert.Equal(t, "", v.Get())
	})

	t.Run("it should let a child override after its parent froze", func(t *testing.T) {
		appLock := NewLock("app")
		app := New(appLock, "level", "info")
		child := app.Inherit(NewLock("admin"))
		appLock.Freeze()

		assert.NoError(t, child.Set("debug"))
		assert.Equal(t, "debug", child.Get())
		assert.NoError(t, child.Reset())
		assert.Equal(t, "info", child.Get())
	})
}

func TestDefined(t *testing.T) {
	app := New(NewLock("app"), "csrf_protection", false)
	slice := app.Inherit(NewLock("admin"))

	assert.False(t, slice.Defined())

	app.MustSet(true)
	assert.True(t, slice.Defined())
	assert.False(t, slice.IsSet())
}

func TestReferenceValues(t *testing.T) {
	t.Run("it should not let returned maps write into a frozen value", func(t *testing.T) {
		lock := NewLock("app")
		app := New(lock, "default_headers", map[string]string{"X-Frame-Options": "DENY"})
		slice := app.Inherit(NewLock("admin"))
		lock.Freeze()

		app.Get()["X-Injected"] = "yes"

		assert.Equal(t, map[string]string{"X-Frame-Options": "DENY"}, app.Get())
		assert.Equal(t, map[string]string{"X-Frame-Options": "DENY"}, slice.Get())
	})

	t.Run("it should not let returned slices write into a frozen value", func(t *testing.T) {
		lock := NewLock("app")
		app := New(lock, "shared_app_component_keys", []string{"logger"})
		app.MustSet([]string{"settings", "routes"})
		slice := app.Inherit(NewLock("admin"))
		lock.Freeze()

		app.Get()[0] = "hijacked"
		slice.Get()[1] = "hijacked"

		assert.Equal(t, []string{"settings", "routes"}, app.Get())
		assert.Equal(t, []string{"settings", "routes"}, slice.Get())
	})

	t.Run("it should copy nested values on set", func(t *testing.T) {
		formats := map[string][]string{"json": {"application/json"}}
		v := New(NewLock("app"), "formats", map[string][]string{})
		v.MustSet(formats)

		formats["json"][0] = "text/plain"
		formats["csv"] = []string{"text/csv"}

		assert.Equal(t, map[string][]string{"json": {"application/json"}}, v.Get())
	})

	t.Run("it should keep nil maps and non reference values as they are", func(t *testing.T) {
		var headers map[string]string
		assert.Nil(t, New(NewLock("app"), "headers", headers).Get())

		var w interface{ Write([]byte) (int, error) }
		assert.Nil(t, New(NewLock("app"), "stream", w).Get())
	})
}
