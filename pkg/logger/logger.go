// Package logger configures the global zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var once sync.Once

// Init sets the global level and output. level is one of debug, info,
// warn, error, fatal, panic, disabled (any case); an empty or unknown level
// falls back to warn. pretty selects the console writer instead of JSON.
// Only the first call has an effect.
func Init(appName, level string, pretty bool) {
	InitTo(os.Stdout, appName, level, pretty)
}

// InitTo is Init writing to out. CLI commands that print results on stdout
// log to stderr.
func InitTo(out io.Writer, appName, level string, pretty bool) {
	once.Do(func() {
		initLogger(out, appName, level, pretty)
	})
}

func initLogger(out io.Writer, appName, level string, pretty bool) {
	lvl, ok := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)

	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		if i := strings.LastIndexByte(file, '/'); i >= 0 {
			file = file[i+1:]
		}
		return file + ":" + strconv.Itoa(line)
	}

	if pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "02-01-2006 15:04:05.000",
			FormatLevel: func(i interface{}) string {
				return strings.ToUpper(fmt.Sprintf("%-6s", i))
			},
		}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Caller().Str("app", appName).Logger()

	if !ok {
		log.Warn().Str("level", level).Msg("log level not set or unknown, defaulting to warn")
	}
}

// ParseLevel maps a level name to a zerolog level. The bool is false when
// the name was empty or unknown and warn was returned instead.
func ParseLevel(level string) (zerolog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel, true
	case "INFO":
		return zerolog.InfoLevel, true
	case "WARN":
		return zerolog.WarnLevel, true
	case "ERROR":
		return zerolog.ErrorLevel, true
	case "FATAL":
		return zerolog.FatalLevel, true
	case "PANIC":
		return zerolog.PanicLevel, true
	case "DISABLED":
		return zerolog.Disabled, true
	default:
		return zerolog.WarnLevel, false
	}
}
