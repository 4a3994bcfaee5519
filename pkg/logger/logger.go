package logx

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls global logger initialisation.
type Options struct {
	// Production switches to plain JSON output at Info level; the default
	// is a human-readable console writer at Debug level.
	Production bool
}

// Init configures the global zerolog logger. Call once from main before
// any other package logs.
func Init(opts Options) {
	if opts.Production {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
		return
	}
	log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Caller().Logger()
	log.Logger = log.Logger.Level(zerolog.DebugLevel)
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
