package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/config"
)

type testConfig struct {
	AppName  string        `env:"TEST_APP_NAME" envDefault:"tenantkit"`
	Port     int           `env:"TEST_PORT" envDefault:"8080"`
	Debug    bool          `env:"TEST_DEBUG" envDefault:"false"`
	Interval time.Duration `env:"TEST_INTERVAL" envDefault:"5m"`
	Required string        `env:"TEST_REQUIRED_VALUE,required"`
}

func TestLoad(t *testing.T) {
	t.Run("reads environment with defaults", func(t *testing.T) {
		t.Setenv("TEST_REQUIRED_VALUE", "present")
		t.Setenv("TEST_PORT", "9090")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "tenantkit", cfg.AppName)
		assert.Equal(t, 9090, cfg.Port)
		assert.False(t, cfg.Debug)
		assert.Equal(t, 5*time.Minute, cfg.Interval)
		assert.Equal(t, "present", cfg.Required)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParseFailed)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var cfg *testConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilConfig)
	})

	t.Run("malformed value fails", func(t *testing.T) {
		t.Setenv("TEST_REQUIRED_VALUE", "present")
		t.Setenv("TEST_PORT", "not-a-number")

		var cfg testConfig
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParseFailed)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		var cfg testConfig
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})

	t.Run("fills the struct on success", func(t *testing.T) {
		t.Setenv("TEST_REQUIRED_VALUE", "present")

		var cfg testConfig
		assert.NotPanics(t, func() { config.MustLoad(&cfg) })
		assert.Equal(t, "present", cfg.Required)
	})
}
