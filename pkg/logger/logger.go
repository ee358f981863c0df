package logger

// Printf-style helpers used during boot, before request context exists.

// Info logs a formatted info message
func Info(format string, args ...interface{}) {
	zlog.Info().Msgf(format, args...)
}

// Warn logs a formatted warning
func Warn(format string, args ...interface{}) {
	zlog.Warn().Msgf(format, args...)
}

// Error logs a formatted error
func Error(format string, args ...interface{}) {
	zlog.Error().Msgf(format, args...)
}

// Debug logs a formatted debug message
func Debug(format string, args ...interface{}) {
	zlog.Debug().Msgf(format, args...)
}
