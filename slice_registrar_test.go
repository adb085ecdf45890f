package hanami

import (
	"testing"

	"github.com/slimloans/hanami/config"
	"github.com/slimloans/hanami/env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApplication builds an application in the test environment rooted
// in a temporary directory
func newTestApplication(t *testing.T, options Options) *Application {
	t.Helper()

	if options.Env == "" {
		options.Env = env.Test
	}
	if options.Root == "" {
		options.Root = t.TempDir()
	}

	return NewApplication(options)
}

func TestSliceRegistrar(t *testing.T) {
	slices := map[string]SliceOptions{
		"admin": {
			Slices: map[string]SliceOptions{
				"billing": {},
			},
		},
		"main": {},
	}

	t.Run("it should register slices in name order", func(t *testing.T) {
		app := newTestApplication(t, Options{Slices: slices})

		assert.Equal(t, []string{"admin", "main"}, app.Slices().Keys())
	})

	t.Run("it should look up nested slices by dotted path", func(t *testing.T) {
		app := newTestApplication(t, Options{Slices: slices})

		billing, err := app.Slices().Get("admin.billing")
		require.NoError(t, err)

		assert.Equal(t, "admin.billing", billing.String())
		assert.Equal(t, "billing", billing.Name().Name())
		assert.Equal(t, "admin", billing.Parent().String())
		assert.Same(t, app.Slice, billing.Parent().Parent())
	})

	t.Run("it should build a slice once", func(t *testing.T) {
		app := newTestApplication(t, Options{Slices: slices})

		first, err := app.Slices().Get("main")
		require.NoError(t, err)

		second, err := app.Slice.Slice("main")
		require.NoError(t, err)

		assert.Same(t, first, second)
	})

	t.Run("it should report unknown slices", func(t *testing.T) {
		app := newTestApplication(t, Options{Slices: slices})

		for _, path := range []string{"missing", "admin.missing", "main.billing"} {
			_, err := app.Slices().Get(path)
			assert.ErrorIs(t, err, ErrorSliceNotFound, path)
			assert.False(t, app.Slices().Has(path), path)
		}
	})

	t.Run("it should reject invalid and duplicate names", func(t *testing.T) {
		app := newTestApplication(t, Options{Slices: slices})

		assert.ErrorIs(t, app.Slices().Register("Admin", SliceOptions{}), ErrorInvalidSliceName)
		assert.ErrorIs(t, app.Slices().Register("admin.billing", SliceOptions{}), ErrorInvalidSliceName)
		assert.ErrorIs(t, app.Slices().Register("admin", SliceOptions{}), ErrorDuplicateSlice)
		assert.NoError(t, app.Slices().Register("api", SliceOptions{}))

		assert.Equal(t, []string{"admin", "main", "api"}, app.Slices().Keys())
	})

	t.Run("it should reject registration once prepared", func(t *testing.T) {
		app := newTestApplication(t, Options{Slices: slices})
		require.NoError(t, app.Prepare())

		assert.ErrorIs(t, app.Slices().Register("api", SliceOptions{}), ErrorSliceState)
	})

	t.Run("it should only load the configured slices", func(t *testing.T) {
		app := newTestApplication(t, Options{
			Slices:    slices,
			Configure: func(c *config.Config) { c.Slices.MustSet([]string{"admin.billing"}) },
		})
		require.NoError(t, app.Prepare())

		assert.Equal(t, []string{"admin"}, app.Slices().Keys())
		assert.True(t, app.Slices().Has("admin.billing"))
		assert.False(t, app.Slices().Has("main"))
	})

	t.Run("it should walk nested slices depth first", func(t *testing.T) {
		app := newTestApplication(t, Options{Slices: slices})

		var visited []string
		err := app.Slices().WithNested(func(s *Slice) error {
			visited = append(visited, s.String())
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"admin", "admin.billing", "main"}, visited)
	})
}
