package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the handler used for the primary output.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config describes a logger.
type Config struct {
	Level  slog.Level
	Format Format

	// Output defaults to os.Stderr.
	Output io.Writer

	// Tee, when set, receives a JSON copy of every record that passes Level.
	// serve points it at the configured log file.
	Tee io.Writer

	AddSource bool
}

// ParseConfig builds a Config from the level and format strings used in
// configuration files and flags. Unknown values fall back to info and text.
func ParseConfig(level, format string) Config {
	return Config{
		Level:  ParseLevel(level),
		Format: ParseFormat(format),
	}
}

// New builds a logger from cfg.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}

	handler := newHandler(out, cfg.Format, opts)
	if cfg.Tee != nil {
		handler = newTeeHandler(handler, newHandler(cfg.Tee, FormatJSON, opts))
	}
	return slog.New(handler)
}

func newHandler(w io.Writer, format Format, opts *slog.HandlerOptions) slog.Handler {
	if format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Nop returns a logger that drops everything. Packages default to it until
// SetLogger or WithLogger is called.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps debug, info, warn (or warning) and error to a level,
// ignoring case. Anything else is info.
func ParseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "error":
		var level slog.Level
		if err := level.UnmarshalText([]byte(s)); err == nil {
			return level
		}
	}
	return slog.LevelInfo
}

// ParseFormat returns FormatJSON for "json" in any case and FormatText
// otherwise.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}
