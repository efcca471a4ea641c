package config

import "time"

// Config is the complete server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Seed       SeedConfig       `yaml:"seed"`
	Pagination PaginationConfig `yaml:"pagination"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"CANONREST_ADDR" env-description:"HTTP listen address"`
	BasePath        string        `yaml:"basePath" env:"CANONREST_BASE_PATH" env-description:"Collection path of the resource API"`
	ReadTimeout     time.Duration `yaml:"readTimeout" env:"CANONREST_READ_TIMEOUT" env-description:"HTTP read timeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" env:"CANONREST_WRITE_TIMEOUT" env-description:"HTTP write timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"CANONREST_SHUTDOWN_TIMEOUT" env-description:"Graceful shutdown timeout"`
	MaxBodySize     int64         `yaml:"maxBodySize" env:"CANONREST_MAX_BODY_SIZE" env-description:"Maximum request body size in bytes"`
	Metrics         bool          `yaml:"metrics" env:"CANONREST_METRICS" env-description:"Serve operation counters at /api/metrics"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"CANONREST_LOG_LEVEL" env-description:"Log level (debug, info, warn, error)"`
	Format string `yaml:"format" env:"CANONREST_LOG_FORMAT" env-description:"Log format (text, json)"`
	File   string `yaml:"file" env:"CANONREST_LOG_FILE" env-description:"Also write JSON logs to this file"`
}

// SeedConfig controls the initial dataset created at startup and on reset.
type SeedConfig struct {
	Count  int    `yaml:"count" env:"CANONREST_SEED_COUNT" env-description:"Number of seeded resources"`
	Prefix string `yaml:"prefix" env:"CANONREST_SEED_PREFIX" env-description:"Data prefix of seeded resources"`
}

// PaginationConfig bounds list requests.
type PaginationConfig struct {
	DefaultTake int `yaml:"defaultTake" env:"CANONREST_DEFAULT_TAKE" env-description:"Page size when take is omitted"`
	MaxTake     int `yaml:"maxTake" env:"CANONREST_MAX_TAKE" env-description:"Largest accepted page size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			BasePath:        "/api/sample",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodySize:     1 << 20,
			Metrics:         true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Seed: SeedConfig{
			Count:  20,
			Prefix: "Resource",
		},
		Pagination: PaginationConfig{
			DefaultTake: 100,
			MaxTake:     1000,
		},
	}
}
