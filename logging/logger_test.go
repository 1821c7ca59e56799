package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/studio-portfolio-backend/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewWritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.InfoLevel)

	logger.Debug().Msg("hidden")
	logger.Info().Str("handlerName", "projectHandler").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, serviceName, entry["service"])
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "projectHandler", entry["handlerName"])
}

func TestSetupWithLogFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	logger := Setup(config.Config{"LOG_FILE": file, "LOG_LEVEL": "error"})

	assert.Equal(t, zerolog.ErrorLevel, logger.GetLevel())
}
