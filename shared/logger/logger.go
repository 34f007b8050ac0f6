package logger

import (
	"context"
	"os"
	"time"
	"todolist/config"
	"todolist/shared/constant"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func InitLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	if cfg != nil && cfg.Server.Env == constant.ServerEnvProduction {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	log.Trace().Msg("Zerolog initialized.")
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

func SetLogLevel(config *config.Config) {
	level, err := zerolog.ParseLevel(config.Server.LogLevel)
	if err != nil {
		level = zerolog.TraceLevel
		log.Trace().Str("loglevel", level.String()).Msg("Environment has no log level set up, using default.")
	} else {
		log.Trace().Str("loglevel", level.String()).Msg("Desired log level detected.")
	}

	zerolog.SetGlobalLevel(level)
}

// WithRequestID stores the request id so later log lines can be correlated.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, constant.ContextKeyRequestID, requestID)
}

// RequestID returns the request id stored in ctx, or an empty string.
func RequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(constant.ContextKeyRequestID).(string)

	return requestID
}

// FromContext returns the global logger enriched with the request id, if any.
func FromContext(ctx context.Context) *zerolog.Logger {
	requestID := RequestID(ctx)
	if requestID == "" {
		return &log.Logger
	}

	l := log.With().Str("request_id", requestID).Logger()

	return &l
}
