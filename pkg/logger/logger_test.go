package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", FormatJSON, &buf)

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Str("k", "v").Msg("shown")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "blog-service", line["service"])
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", FormatConsole, &buf)
	log.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, strings.HasPrefix(buf.String(), "{"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("loud"))
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
}

func TestSanitizeLogMessage(t *testing.T) {
	msg := SanitizeLogMessage("login password=hunter2 token: abc.def.ghi")
	assert.NotContains(t, msg, "hunter2")
	assert.NotContains(t, msg, "abc.def.ghi")
	assert.Contains(t, msg, redactedPlaceholder)
}

func TestSanitizeMap(t *testing.T) {
	out := SanitizeMap(map[string]interface{}{
		"username":      "alice",
		"password_hash": "$2a$...",
		"Authorization": "Bearer x",
	})
	assert.Equal(t, "alice", out["username"])
	assert.Equal(t, redactedPlaceholder, out["password_hash"])
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***@example.com", MaskEmail("alice@example.com"))
	assert.Equal(t, redactedPlaceholder, MaskEmail("no-at-sign"))
	assert.Equal(t, "user a***@example.com failed", SanitizeLogMessage("user alice@example.com failed"))
}
