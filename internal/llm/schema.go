package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema validates the shape of a JSON object returned by a model.
type Schema struct {
	schema *gojsonschema.Schema
}

// MustSchema compiles a JSON schema document and panics if it is invalid.
func MustSchema(src string) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("llm: invalid json schema: %v", err))
	}
	return &Schema{schema: s}
}

// Validate checks raw JSON against the schema.
func (s *Schema) Validate(raw string) error {
	result, err := s.schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("llm: validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("llm: model output failed validation: %s", strings.Join(errs, "; "))
	}
	return nil
}

// DecodeValidated extracts the embedded object from text, validates it and unmarshals it into v.
func DecodeValidated(text string, schema *Schema, v any) error {
	raw, err := ExtractJSONObject(text)
	if err != nil {
		return err
	}
	if schema != nil {
		if err := schema.Validate(raw); err != nil {
			return err
		}
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("llm: decode json object: %w", err)
	}
	return nil
}
