// Package catalog loads the static pre-seeded opportunity catalog and
// validates it against its JSON Schema before use.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/karthik/placementhub/internal/types"
)

//go:embed schema.json
var schemaJSON string

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation found in a catalog file.
type ValidationError struct {
	Path   string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("catalog %s failed validation:", e.Path)
	for i, fe := range e.Errors {
		msg += fmt.Sprintf("\n  %d. %s: %s", i+1, fe.Field, fe.Message)
	}
	return msg
}

type catalogFile struct {
	Opportunities []types.Opportunity `json:"opportunities"`
}

// Load reads, validates, and decodes the catalog at path. Schema violations
// surface as a *ValidationError naming each offending field.
func Load(path string) ([]types.Opportunity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse validates and decodes raw catalog JSON. The path is used only in
// error messages.
func Parse(path string, data []byte) ([]types.Opportunity, error) {
	if err := validate(path, data); err != nil {
		return nil, err
	}
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return f.Opportunities, nil
}

func validate(path string, data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("failed to validate catalog %s: %w", path, err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Path: path}
	for _, desc := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return ve
}
