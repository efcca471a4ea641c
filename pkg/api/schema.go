package api

import (
	"bytes"
	_ "embed"
	"errors"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/getmockd/canonrest/pkg/repository"
)

//go:embed resource.schema.json
var resourceSchema []byte

const resourceSchemaURL = "resource.schema.json"

func compileResourceSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(resourceSchemaURL, bytes.NewReader(resourceSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(resourceSchemaURL)
}

// validateBody checks a decoded JSON body against the resource schema.
func (a *API) validateBody(body any) error {
	err := a.schema.Validate(body)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &repository.ValidationError{Message: err.Error()}
	}
	leaf := firstLeaf(ve)
	return &repository.ValidationError{
		Field:   fieldFromPointer(leaf.InstanceLocation),
		Message: leaf.Message,
	}
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

func fieldFromPointer(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	return strings.ReplaceAll(ptr, "/", ".")
}
