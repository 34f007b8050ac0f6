package logger_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"todolist/config"
	"todolist/shared/logger"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	logger.InitLogger(&config.Config{})

	assert.Equal(t, zerolog.TimeFormatUnix, zerolog.TimeFieldFormat)
	assert.Equal(t, zerolog.TraceLevel, zerolog.GlobalLevel())

	// nil config falls back to the console writer
	assert.NotPanics(t, func() { logger.InitLogger(nil) })
}

func TestErrorWithStack(t *testing.T) {
	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	var buf bytes.Buffer
	log.Logger = log.Output(&buf)

	logger.ErrorWithStack(errors.New("test error"))

	assert.Contains(t, buf.String(), "test error")
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		name          string
		logLevel      string
		expectedLevel zerolog.Level
	}{
		{name: "trace level", logLevel: "trace", expectedLevel: zerolog.TraceLevel},
		{name: "debug level", logLevel: "debug", expectedLevel: zerolog.DebugLevel},
		{name: "info level", logLevel: "info", expectedLevel: zerolog.InfoLevel},
		{name: "warn level", logLevel: "warn", expectedLevel: zerolog.WarnLevel},
		{name: "error level", logLevel: "error", expectedLevel: zerolog.ErrorLevel},
		{name: "disabled level", logLevel: "disabled", expectedLevel: zerolog.Disabled},
		{name: "invalid level defaults to trace", logLevel: "invalid_level", expectedLevel: zerolog.TraceLevel},
		{name: "empty level uses NoLevel", logLevel: "", expectedLevel: zerolog.NoLevel},
	}

	originalLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(originalLevel)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Server.LogLevel = tt.logLevel

			logger.SetLogLevel(cfg)

			assert.Equal(t, tt.expectedLevel, zerolog.GlobalLevel())
		})
	}
}

func TestFromContext(t *testing.T) {
	originalLogger := log.Logger
	originalLevel := zerolog.GlobalLevel()

	defer func() {
		log.Logger = originalLogger
		zerolog.SetGlobalLevel(originalLevel)
	}()

	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	ctx := logger.WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", logger.RequestID(ctx))

	logger.FromContext(ctx).Info().Msg("hello")
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)

	buf.Reset()
	logger.FromContext(context.Background()).Info().Msg("plain")
	assert.NotContains(t, buf.String(), "request_id")
	assert.Empty(t, logger.RequestID(context.Background()))
}
