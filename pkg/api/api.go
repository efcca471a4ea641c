package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/getmockd/canonrest/pkg/logging"
	"github.com/getmockd/canonrest/pkg/repository"
)

// Defaults for API options.
const (
	DefaultBasePath    = "/api/sample"
	DefaultTake        = 100
	DefaultMaxTake     = 1000
	DefaultMaxBodySize = 1 << 20
)

// API serves the resource endpoints.
type API struct {
	repo        *repository.Repository
	metrics     *repository.MetricsObserver
	basePath    string
	defaultTake int
	maxTake     int
	maxBodySize int64
	log         *slog.Logger

	schema *jsonschema.Schema
	doc    *openapi3.T
}

// New builds an API around repo. It fails if the embedded request schema
// or OpenAPI document do not load.
func New(repo *repository.Repository, opts ...Option) (*API, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}

	a := &API{
		repo:        repo,
		basePath:    DefaultBasePath,
		defaultTake: DefaultTake,
		maxTake:     DefaultMaxTake,
		maxBodySize: DefaultMaxBodySize,
		log:         logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	schema, err := compileResourceSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile resource schema: %w", err)
	}
	a.schema = schema

	doc, err := loadOpenAPI(a.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	a.doc = doc

	return a, nil
}

// SetLogger sets the operational logger.
func (a *API) SetLogger(log *slog.Logger) {
	if log != nil {
		a.log = log
	}
}

// BasePath returns the collection path.
func (a *API) BasePath() string {
	return a.basePath
}

// Handler returns the routed handler wrapped in request logging.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.registerRoutes(mux)
	return a.loggingMiddleware(mux)
}
