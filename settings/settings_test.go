package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/slimloans/hanami/env"
	"github.com/slimloans/hanami/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Mailer struct {
	MailerHost string `default:"localhost"`
}

type AppSettings struct {
	Mailer

	DatabaseURL string          `env:"DATABASE_URL" required:"true"`
	PageSize    int             `default:"25"`
	Debug       bool            `env:"DEBUG"`
	Ratio       float64         `default:"0.5"`
	Timeout     time.Duration   `default:"30s"`
	Fee         decimal.Decimal `default:"0.25"`
	Hosts       []string        `env:"ALLOWED_HOSTS"`
	Internal    string          `env:"-"`
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o600))
	}
	return root
}

func TestFiles(t *testing.T) {
	assert.Equal(t, []string{".env", ".env.test", ".env.test.local"}, Files(env.Test))
	assert.Equal(t, []string{".env", ".env.production", ".env.local", ".env.production.local"}, Files(env.Production))
}

func TestLoad(t *testing.T) {
	t.Run("it should layer dotenv files", func(t *testing.T) {
		root := writeFiles(t, map[string]string{
			".env":            "DATABASE_URL=postgres://localhost/dev\nPAGE_SIZE=10\nDEBUG=true\n",
			".env.test":       "DATABASE_URL=postgres://localhost/test\n",
			".env.local":      "PAGE_SIZE=99\n",
			".env.test.local": "ALLOWED_HOSTS=a.test, b.test\n",
		})

		var s AppSettings
		require.NoError(t, Load(root, env.Test, &s))

		assert.Equal(t, "postgres://localhost/test", s.DatabaseURL)
		assert.Equal(t, 10, s.PageSize)
		assert.True(t, s.Debug)
		assert.Equal(t, []string{"a.test", "b.test"}, s.Hosts)
	})

	t.Run("it should apply defaults", func(t *testing.T) {
		root := writeFiles(t, map[string]string{".env": "DATABASE_URL=sqlite://:memory:\n"})

		var s AppSettings
		require.NoError(t, Load(root, env.Test, &s))

		assert.Equal(t, 25, s.PageSize)
		assert.Equal(t, 0.5, s.Ratio)
		assert.Equal(t, 30*time.Second, s.Timeout)
		assert.True(t, decimal.New(25, -2).Equal(s.Fee))
		assert.Equal(t, "localhost", s.MailerHost)
		assert.Empty(t, s.Internal)
	})

	t.Run("it should let the process environment win", func(t *testing.T) {
		root := writeFiles(t, map[string]string{".env": "DATABASE_URL=sqlite://:memory:\n"})
		t.Setenv("PAGE_SIZE", "50")
		t.Setenv("MAILER_HOST", "smtp.test")

		var s AppSettings
		require.NoError(t, Load(root, env.Test, &s))

		assert.Equal(t, 50, s.PageSize)
		assert.Equal(t, "smtp.test", s.MailerHost)
	})

	t.Run("it should collect every invalid setting", func(t *testing.T) {
		root := writeFiles(t, map[string]string{".env": "PAGE_SIZE=many\nFEE=cheap\n"})

		var s AppSettings
		err := Load(root, env.Test, &s)

		var invalid *InvalidSettingsError
		require.True(t, errors.As(err, &invalid))
		assert.Len(t, invalid.Errors, 3)
		assert.Contains(t, invalid.Errors, "DATABASE_URL")
		assert.Contains(t, invalid.Errors, "PAGE_SIZE")
		assert.Contains(t, invalid.Errors, "FEE")
		assert.Contains(t, err.Error(), "DATABASE_URL: is missing")
	})

	t.Run("it should decode durations, lists and overflowing numbers", func(t *testing.T) {
		root := writeFiles(t, map[string]string{
			".env": "DATABASE_URL=sqlite://:memory:\nTIMEOUT=1m30s\nALLOWED_HOSTS=a.test,,b.test\n",
		})

		var s AppSettings
		require.NoError(t, Load(root, env.Test, &s))
		assert.Equal(t, 90*time.Second, s.Timeout)
		assert.Equal(t, []string{"a.test", "b.test"}, s.Hosts)

		var small struct {
			Retries int8 `default:"300"`
			Timeout time.Duration
		}
		t.Setenv("TIMEOUT", "soon")

		var invalid *InvalidSettingsError
		require.True(t, errors.As(Load(t.TempDir(), env.Test, &small), &invalid))
		assert.Contains(t, invalid.Errors, "RETRIES")
		assert.Contains(t, invalid.Errors, "TIMEOUT")
	})

	t.Run("it should reject non struct targets", func(t *testing.T) {
		var s string
		assert.True(t, errors.Is(Load(t.TempDir(), env.Test, &s), ErrorInvalidTarget))
	})
}
