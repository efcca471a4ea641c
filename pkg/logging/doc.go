// Package logging builds the log/slog loggers used by canonrest.
//
// serve creates one logger from the logging section of the configuration:
//
//	cfg := logging.ParseConfig("debug", "json")
//	cfg.Tee = logFile
//	log := logging.New(cfg)
//
// The primary output is text or JSON on stderr. When a log file is
// configured every record is also written to it as JSON. Components take
// the logger through an option or setter and fall back to Nop.
package logging
