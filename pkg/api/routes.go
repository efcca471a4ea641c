package api

import (
	"net/http"
)

// Paths served outside the resource collection.
const (
	OpenAPIPath = "/api/openapi.json"
	MetricsPath = "/api/metrics"
	HealthPath  = "/healthz"
)

func (a *API) registerRoutes(mux *http.ServeMux) {
	base := a.basePath

	mux.HandleFunc("GET "+base, a.handleList)
	mux.HandleFunc("GET "+base+"/{$}", a.handleList)
	mux.HandleFunc("POST "+base, a.handleCreate)
	mux.HandleFunc("POST "+base+"/{$}", a.handleCreate)
	mux.HandleFunc("GET "+base+"/{key}", a.handleGet)
	mux.HandleFunc("PUT "+base+"/{key}", a.handleReplace)
	mux.HandleFunc("PUT "+base+"/addorupdate/{key}", a.handleAddOrUpdate)
	mux.HandleFunc("DELETE "+base+"/{key}", a.handleDelete)

	mux.HandleFunc("GET "+OpenAPIPath, a.handleOpenAPI)
	mux.HandleFunc("GET "+HealthPath, a.handleHealth)
	if a.metrics != nil {
		mux.HandleFunc("GET "+MetricsPath, a.handleMetrics)
	}
}
