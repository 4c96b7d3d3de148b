package log_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/InNoobWeTrust/web-automator/pkg/log"
	"github.com/InNoobWeTrust/web-automator/pkg/security"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter(t *testing.T) {
	out := &bytes.Buffer{}
	zl := zerolog.New(out)
	logger := log.NewZerologAdapter(zl)

	logger.Info().
		Str("unit", "test").
		Int("n", 1).
		Float64("seconds", 1.5).
		Bool("critical", true).
		Msg("hello")

	assert.Contains(t, out.String(), `"unit":"test"`)
	assert.Contains(t, out.String(), `"n":1`)
	assert.Contains(t, out.String(), `"seconds":1.5`)
	assert.Contains(t, out.String(), `"critical":true`)
}

func TestAdapter_WithScope(t *testing.T) {
	out := &bytes.Buffer{}
	logger := log.NewZerologAdapter(zerolog.New(out))

	scoped := logger.With().Str("domain", "example.com").Logger()
	scoped.Warn().Msg("scoped")

	assert.Contains(t, out.String(), `"domain":"example.com"`)
	assert.Contains(t, out.String(), `"level":"warn"`)
}

func TestNew_Level(t *testing.T) {
	out := &bytes.Buffer{}
	logger := log.New(out, zerolog.InfoLevel)

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
	assert.Contains(t, out.String(), `"time":`)
}

type captureSink struct {
	events []*log.LogEvent
	closed bool
}

func (c *captureSink) Write(evt *log.LogEvent) error {
	c.events = append(c.events, evt)
	return nil
}

func (c *captureSink) Close() error {
	c.closed = true
	return nil
}

func TestRouter_DecodesAndRedacts(t *testing.T) {
	sink := &captureSink{}
	router := log.NewRouter(sink)
	router.SetRedactor(security.NewRedactor("s3cr3t"))

	logger := log.New(router, zerolog.DebugLevel)
	logger.Error().
		Err(errors.New("token s3cr3t rejected")).
		Str("domain", "example.com").
		Interface("cookie", map[string]any{"value": "s3cr3t"}).
		Msg("login with s3cr3t failed")

	require.Len(t, sink.events, 1)
	evt := sink.events[0]
	assert.Equal(t, types.ErrorLevel, evt.Level)
	assert.Equal(t, "login with ******** failed", evt.Message)
	assert.Equal(t, "token ******** rejected", evt.Fields["error"])
	assert.Equal(t, "example.com", evt.Fields["domain"])
	assert.Equal(t, map[string]any{"value": "********"}, evt.Fields["cookie"])
	assert.False(t, evt.Timestamp.IsZero())

	require.NoError(t, router.Close())
	assert.True(t, sink.closed)
}

func TestRouter_IgnoresGarbage(t *testing.T) {
	sink := &captureSink{}
	router := log.NewRouter(sink)

	n, err := router.Write([]byte("not json"))
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Empty(t, sink.events)
}

func TestConvertZerologLevel(t *testing.T) {
	assert.Equal(t, types.DebugLevel, log.ConvertZerologLevel(zerolog.TraceLevel))
	assert.Equal(t, types.WarnLevel, log.ConvertZerologLevel(zerolog.WarnLevel))
	assert.Equal(t, types.FatalLevel, log.ConvertZerologLevel(zerolog.PanicLevel))
	assert.Equal(t, types.InfoLevel, log.ConvertZerologLevel(zerolog.NoLevel))
}
