package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New constructs the console logger used by the CLI, writing to w. Verbose
// enables debug output such as every poll attempt.
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
