package logtrace

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	require.NoError(t, InitLoggerWithWriter(&buf, "warn", false))
	log.Info().Msg("hidden")
	log.Warn().Str("op", "login").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"op":"login"`)
	assert.False(t, IsTraceEnabled())

	require.NoError(t, InitLoggerWithWriter(&buf, "", false))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	require.NoError(t, InitLoggerWithWriter(&buf, "TRACE", true))
	assert.True(t, IsTraceEnabled())

	assert.Error(t, InitLoggerWithWriter(&buf, "loud", false))
}

func TestRequestIdFromContext(t *testing.T) {
	assert.Empty(t, RequestIdFromContext(context.Background()))
	assert.Empty(t, RequestIdFromContext(nil))

	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestIdFromContext(ctx))
}
