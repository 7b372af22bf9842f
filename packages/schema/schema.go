// Package schema validates response bodies against JSON Schema documents.
package schema

import (
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// Result is the outcome of validating one document.
type Result struct {
	Valid  bool
	Errors []string
}

// ValidateBytes checks document against the given JSON Schema.
func ValidateBytes(schemaData, document []byte) (*Result, error) {
	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	out := &Result{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, desc.String())
	}
	return out, nil
}

// ValidateFile reads a schema from disk and checks document against it.
func ValidateFile(schemaPath string, document []byte) (*Result, error) {
	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return ValidateBytes(schemaData, document)
}
