package util

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	stdlog "log"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger = zerolog.Logger

// LogLevel represents available log levels
type LogLevel = int

// Log levels
const (
	TraceLevel LogLevel = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

// initialized is set once InitializeLogger has configured the global logger.
// Until then component loggers discard everything, so a library caller that
// never sets up logging sees no output.
var initialized atomic.Bool

// toZerolog maps a LogLevel to its zerolog equivalent, defaulting to info.
func toZerolog(level LogLevel) zerolog.Level {
	switch level {
	case TraceLevel:
		return zerolog.TraceLevel
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// InitializeLogger sets up the global logger, writing human readable output
// to stderr.
func InitializeLogger(level LogLevel) {
	InitializeLoggerTo(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, level)
}

// InitializeLoggerTo sets up the global logger writing to out.
func InitializeLoggerTo(out io.Writer, level LogLevel) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(toZerolog(level))

	ctx := zerolog.New(out).With().Timestamp()
	if level == TraceLevel {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	initialized.Store(true)
	log.Debug().Msg("Logger initialized")
}

// GetLogger returns a configured logger for a specific component, or a
// disabled one before InitializeLogger has run.
func GetLogger(component string) zerolog.Logger {
	if !initialized.Load() {
		return zerolog.Nop()
	}
	return log.With().Str("component", component).Logger()
}

// zerologWriter wraps zerolog to implement io.Writer for stdlog
type zerologWriter struct {
	component string
	level     zerolog.Level
}

func (w zerologWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	// Remove stdlog prefix if present (timestamp and flags)
	if idx := strings.LastIndex(msg, ": "); idx != -1 && idx < len(msg)-2 {
		msg = msg[idx+2:]
	}
	logger := GetLogger(w.component)
	logger.WithLevel(w.level).Msg(msg)

	return len(p), nil
}

// NewLogLogger returns a stdlog.Logger that routes to zerolog, for APIs such
// as http.Server.ErrorLog that only accept the standard logger.
func NewLogLogger(component string, lvl LogLevel) *stdlog.Logger {
	writer := zerologWriter{component: component, level: toZerolog(lvl)}
	return stdlog.New(writer, "", 0)
}
