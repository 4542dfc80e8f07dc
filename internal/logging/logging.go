package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const devEnv = "DEV"

// New builds the process logger. DEV gets a human readable console writer, every other
// environment gets one JSON object per line. An unknown level falls back to info.
func New(env, level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if strings.EqualFold(env, devEnv) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
