package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with service attribute", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithService("tenantkit"),
		)
		log.Info("org bootstrapped", slog.String("org_id", "org-1"))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "org bootstrapped", record["msg"])
		assert.Equal(t, "INFO", record["level"])
		assert.Equal(t, "tenantkit", record["service"])
		assert.Equal(t, "org-1", record["org_id"])
	})

	t.Run("info level filters debug by default", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf))
		log.Debug("noise")
		assert.Zero(t, buf.Len())

		log = logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelDebug))
		log.Debug("signal")
		assert.NotZero(t, buf.Len())
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")

		out := buf.String()
		assert.True(t, strings.Contains(out, "msg=hello"), "got %q", out)
	})

	t.Run("development mode enables debug text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithDevelopment())
		log.Debug("dev detail")

		assert.Contains(t, buf.String(), "dev detail")
	})

	t.Run("unknown format keeps json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.Format("xml")))
		log.Info("hello")

		var record map[string]any
		assert.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	})
}
