// Package logtrace provides logging and tracing utilities for the application.
// It integrates with zerolog for structured logging and supports request tracing.
package logtrace

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global logger with millisecond Unix timestamps.
// An empty level means info. When pretty is set, output goes through
// zerolog's console writer instead of JSON lines.
func InitLogger(level string, pretty bool) error {
	return InitLoggerWithWriter(os.Stderr, level, pretty)
}

// InitLoggerWithWriter is InitLogger with an explicit output.
func InitLoggerWithWriter(w io.Writer, level string, pretty bool) error {
	lvl := zerolog.InfoLevel
	if strings.TrimSpace(level) != "" {
		var err error
		lvl, err = zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return err
		}
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}
