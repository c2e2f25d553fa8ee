package log

import (
	"io"
	"io/ioutil"
	"strings"

	"github.com/rs/zerolog"
)

// LogLevel mirrors the levels the driver knows about. Trace implies
// info and warn, info implies warn, and so on down to none.
type LogLevel int

const (
	NoneLevel LogLevel = iota
	ErrorLevel
	WarnLevel
	InfoLevel
	TraceLevel
)

var (
	// Level is the current logging level for the driver
	Level = NoneLevel

	logger = zerolog.New(ioutil.Discard).With().Timestamp().Str("component", "bolt").Logger()
)

// SetLevel sets the logging level from a string. Unrecognized values
// disable logging entirely.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "trace":
		Level = TraceLevel
	case "info":
		Level = InfoLevel
	case "warn", "warning":
		Level = WarnLevel
	case "error":
		Level = ErrorLevel
	default:
		Level = NoneLevel
	}
}

// SetOutput redirects driver logging to the given writer. Output is
// discarded until this is called.
func SetOutput(w io.Writer) {
	logger = zerolog.New(w).With().Timestamp().Str("component", "bolt").Logger()
}

// Trace logs at trace level
func Trace(args ...interface{}) {
	if Level >= TraceLevel {
		logger.Trace().Msgf("%v", args)
	}
}

// Tracef logs a formatted message at trace level
func Tracef(msg string, args ...interface{}) {
	if Level >= TraceLevel {
		logger.Trace().Msgf(msg, args...)
	}
}

// Info logs at info level
func Info(args ...interface{}) {
	if Level >= InfoLevel {
		logger.Info().Msgf("%v", args)
	}
}

// Infof logs a formatted message at info level
func Infof(msg string, args ...interface{}) {
	if Level >= InfoLevel {
		logger.Info().Msgf(msg, args...)
	}
}

// Warnf logs a formatted message at warning level
func Warnf(msg string, args ...interface{}) {
	if Level >= WarnLevel {
		logger.Warn().Msgf(msg, args...)
	}
}

// Error logs at error level
func Error(args ...interface{}) {
	if Level >= ErrorLevel {
		logger.Error().Msgf("%v", args)
	}
}

// Errorf logs a formatted message at error level
func Errorf(msg string, args ...interface{}) {
	if Level >= ErrorLevel {
		logger.Error().Msgf(msg, args...)
	}
}
