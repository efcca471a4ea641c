package api

import (
	"context"
	_ "embed"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// loadOpenAPI parses and validates the embedded document and points its
// server entry at basePath.
func loadOpenAPI(basePath string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, err
	}
	doc.Servers = openapi3.Servers{{URL: basePath}}

	if err := doc.Validate(context.Background()); err != nil {
		return nil, err
	}
	return doc, nil
}
