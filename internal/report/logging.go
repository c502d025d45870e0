// Package report streams per-step progress lines and renders the final
// run summary. All output passes through the secret redactor.
package report

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// SetupLogger configures a console logger at the level matching the
// verbosity flag count.
func SetupLogger(w io.Writer, verbosity int) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case verbosity >= 2:
		level = zerolog.TraceLevel
	case verbosity == 1:
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Component returns a logger scoped to a named component.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
