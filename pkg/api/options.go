package api

import (
	"log/slog"
	"strings"

	"github.com/getmockd/canonrest/pkg/repository"
)

// Option configures an API.
type Option func(*API)

// WithBasePath sets the collection path. A trailing slash is dropped.
func WithBasePath(path string) Option {
	return func(a *API) {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		a.basePath = path
	}
}

// WithPagination sets the default and maximum page size for list requests.
// Non-positive values keep the defaults.
func WithPagination(defaultTake, maxTake int) Option {
	return func(a *API) {
		if defaultTake > 0 {
			a.defaultTake = defaultTake
		}
		if maxTake > 0 {
			a.maxTake = maxTake
		}
		if a.defaultTake > a.maxTake {
			a.defaultTake = a.maxTake
		}
	}
}

// WithMaxBodySize limits request bodies.
func WithMaxBodySize(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxBodySize = n
		}
	}
}

// WithMetrics exposes the observer's counters at GET /api/metrics.
func WithMetrics(m *repository.MetricsObserver) Option {
	return func(a *API) {
		a.metrics = m
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}
