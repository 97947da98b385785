// Package logger builds the process-wide zerolog logger for the dashboard and
// the development API.
//
// Each binary calls Init once during startup and passes the result to its
// constructors. Get serves the few call sites that cannot take a logger.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the logger built by Init.
type Options struct {
	// Level is a zerolog level name; "warning" is accepted for "warn".
	// Empty or unknown names mean info.
	Level string
	// Pretty writes colored console lines instead of JSON.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service, when set, tags every entry as "service".
	Service string
}

var (
	once     sync.Once
	instance atomic.Pointer[zerolog.Logger]
)

// Init builds the logger on first call and returns it. Later calls ignore
// opts and return the same logger.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		l := build(opts)
		instance.Store(&l)
	})
	return *instance.Load()
}

func build(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	zctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if opts.Service != "" {
		zctx = zctx.Str("service", opts.Service)
	}
	return zctx.Logger()
}

// Get returns the logger built by Init. It panics before Init.
func Get() zerolog.Logger {
	l := instance.Load()
	if l == nil {
		panic("logger: Get called before Init")
	}
	return *l
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// Reset forgets the built logger so the next Init starts over. Tests only.
func Reset() {
	once = sync.Once{}
	instance.Store(nil)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
