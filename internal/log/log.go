// Package log builds the zerolog logger shared by the stark20 components.
//
// Two formats are supported:
//
//	console  human readable, coloured when stderr is a terminal
//	json     one JSON object per line
//
// The level is one of debug/info/warn/error. Verbose forces debug.
package log

import (
	"io"
	"os"
	"strings"
	"time"

	colorable "github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	Level   string
	Format  string // console or json
	Verbose bool
	Out     io.Writer // defaults to os.Stderr
}

// New returns a logger for opts. An unknown level falls back to warn and an
// unknown format to console; both are reported on the returned logger.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var w io.Writer
	format := strings.ToLower(opts.Format)
	switch format {
	case "json":
		w = out
	default:
		noColor := true
		if f, ok := out.(*os.File); ok && isTerminal(f) {
			noColor = false
			w = zerolog.ConsoleWriter{Out: colorable.NewColorable(f), TimeFormat: time.Kitchen}
		}
		if noColor {
			w = zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.Kitchen}
		}
	}

	logger := zerolog.New(w).With().Timestamp().Logger()

	level, err := parseLevel(opts.Level)
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	logger = logger.Level(level)

	if err != nil {
		logger.Warn().Err(err).Str("level", opts.Level).Msg("invalid log level, using warn")
	}
	if format != "" && format != "json" && format != "console" {
		logger.Warn().Str("format", opts.Format).Msg("invalid log format, using console")
	}
	return logger
}

// Nop discards everything.
func Nop() zerolog.Logger { return zerolog.Nop() }

func parseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.WarnLevel, err
	}
	return lvl, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
