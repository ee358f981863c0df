package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var zlog = zerolog.New(os.Stdout).With().Timestamp().Logger()

// InitStructured initializes the structured zerolog logger
func InitStructured(env string) {
	InitWithWriter(env, nil)
}

// InitWithWriter initializes the logger with an explicit writer (tests pass a buffer).
// A nil writer selects stdout, pretty-printed in development.
func InitWithWriter(env string, out io.Writer) {
	w := out
	if w == nil {
		if IsDevelopment(env) {
			w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		} else {
			w = os.Stdout
		}
	}

	level := zerolog.InfoLevel
	if IsDevelopment(env) {
		level = zerolog.DebugLevel
	}

	zlog = zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", "ventures-backend").
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// IsDevelopment reports whether env names a development environment
func IsDevelopment(env string) bool {
	return env == "development" || env == "dev" || env == "local"
}

// GetLogger returns the global zerolog logger
func GetLogger() *zerolog.Logger {
	return &zlog
}

// WithRequestID returns a logger with request_id field
func WithRequestID(requestID string) zerolog.Logger {
	return zlog.With().Str("request_id", requestID).Logger()
}

// WithComponent returns a logger tagged with a component name
func WithComponent(name string) zerolog.Logger {
	return zlog.With().Str("component", name).Logger()
}
