// Package logger holds the CLI's console logger.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// L is the shared CLI logger. It is never reassigned; the level is the
// zerolog global level so it can change while other goroutines log.
var L = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
	With().Timestamp().Logger()

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// SetLevel changes the logging level. Unknown names fall back to info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
