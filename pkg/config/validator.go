package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation wraps every configuration validation failure.
var ErrValidation = errors.New("invalid configuration")

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	validLogFormats = map[string]bool{"text": true, "json": true}
)

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Validate checks cfg and returns the first problem found.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Server.Addr) == "":
		return &ValidationError{Field: "server.addr", Message: "must not be empty"}
	case !strings.HasPrefix(c.Server.BasePath, "/"):
		return &ValidationError{Field: "server.basePath", Message: "must start with /"}
	case c.Server.ReadTimeout < 0:
		return &ValidationError{Field: "server.readTimeout", Message: "must not be negative"}
	case c.Server.WriteTimeout < 0:
		return &ValidationError{Field: "server.writeTimeout", Message: "must not be negative"}
	case c.Server.ShutdownTimeout <= 0:
		return &ValidationError{Field: "server.shutdownTimeout", Message: "must be positive"}
	case c.Server.MaxBodySize <= 0:
		return &ValidationError{Field: "server.maxBodySize", Message: "must be positive"}
	case !validLogLevels[strings.ToLower(c.Logging.Level)]:
		return &ValidationError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	case !validLogFormats[strings.ToLower(c.Logging.Format)]:
		return &ValidationError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	case c.Seed.Count < 0:
		return &ValidationError{Field: "seed.count", Message: "must not be negative"}
	case c.Pagination.MaxTake <= 0:
		return &ValidationError{Field: "pagination.maxTake", Message: "must be positive"}
	case c.Pagination.DefaultTake <= 0 || c.Pagination.DefaultTake > c.Pagination.MaxTake:
		return &ValidationError{Field: "pagination.defaultTake", Message: "must be between 1 and maxTake"}
	}
	return nil
}
