package env

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentENV_Race(t *testing.T) {
	for i := 0; i < 100; i++ {
		t.Run(fmt.Sprintf("test-%d", i), func(t *testing.T) {
			go CurrentENV()
		})
	}
}

func TestCurrentENV(t *testing.T) {
	defer Set("")

	t.Run("it should detect the test binary", func(t *testing.T) {
		os.Unsetenv("HANAMI_ENV")
		os.Unsetenv("APP_ENV")
		Set("")

		assert.Equal(t, Test, CurrentENV())
		assert.True(t, IsTest())
		assert.True(t, IsDevelopmentOrTest())
	})

	t.Run("it should prefer HANAMI_ENV over APP_ENV", func(t *testing.T) {
		t.Setenv("HANAMI_ENV", Staging)
		t.Setenv("APP_ENV", Production)
		Set("")

		assert.Equal(t, Staging, CurrentENV())
		assert.True(t, IsStaging())
	})

	t.Run("it should fall back to APP_ENV", func(t *testing.T) {
		t.Setenv("APP_ENV", Production)
		os.Unsetenv("HANAMI_ENV")
		Set("")

		assert.True(t, IsProduction())
		assert.False(t, IsDevelopmentOrTest())
	})
}

func TestEnvConditions(t *testing.T) {
	defer Set("")

	tests := []struct {
		name            string
		env             string
		isTest          bool
		isProduction    bool
		isDevelopment   bool
		isStaging       bool
		isDevelopOrTest bool
	}{
		{name: "test", env: Test, isTest: true, isDevelopOrTest: true},
		{name: "production", env: Production, isProduction: true},
		{name: "development", env: Development, isDevelopment: true, isDevelopOrTest: true},
		{name: "staging", env: Staging, isStaging: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Set(tt.env)

			assert.Equal(t, tt.isTest, IsTest())
			assert.Equal(t, tt.isProduction, IsProduction())
			assert.Equal(t, tt.isDevelopment, IsDevelopment())
			assert.Equal(t, tt.isStaging, IsStaging())
			assert.Equal(t, tt.isDevelopOrTest, IsDevelopmentOrTest())
		})
	}
}
