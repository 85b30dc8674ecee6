package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. format is "json" or "text".
func Setup(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if strings.ToLower(format) == "text" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "02/Jan/2006:15:04:05"}
	}

	zerolog.SetGlobalLevel(parseLevel(level))
	logger := zerolog.New(w).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	}
	return zerolog.InfoLevel
}

// GormWriter adapts a zerolog logger to the Printf interface gorm's logger
// expects.
type GormWriter struct {
	Logger zerolog.Logger
}

func (g GormWriter) Printf(format string, args ...interface{}) {
	g.Logger.Debug().Str("component", "gorm").Msgf(format, args...)
}

// SlowQueryThreshold is the duration after which gorm reports a query as slow.
const SlowQueryThreshold = time.Second
