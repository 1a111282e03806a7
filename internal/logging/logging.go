// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cadence-audio/cadence/internal/stderr"
)

// Config controls logger output and verbosity.
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Output string // "stderr", "stdout", or a file path
}

// Init initializes the global logger. Console output gets the human
// format; file output gets JSON lines.
func Init(cfg Config) error {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	var writer io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr", "":
		// The real stderr: fd 2 may be redirected into the C-library
		// noise capture by the time we log.
		writer = zerolog.ConsoleWriter{Out: stderr.Original(), TimeFormat: time.TimeOnly}
	case "stdout":
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		writer = f
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	return nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
