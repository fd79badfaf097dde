package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ObjectSchema accepts any document whose top level is a JSON object.
const ObjectSchema = `{"type": "object"}`

// StructureValidator checks the top-level shape of a JSON document.
type StructureValidator interface {
	Validate(data []byte) error
}

// JSONSchemaValidator implements StructureValidator using gojsonschema.
type JSONSchemaValidator struct {
	schema *gojsonschema.Schema
}

// NewObjectValidator creates a validator that only accepts top-level objects.
func NewObjectValidator() *JSONSchemaValidator {
	v, err := NewJSONSchemaValidator(ObjectSchema)
	if err != nil {
		// ObjectSchema is a constant
		panic(err)
	}
	return v
}

// NewJSONSchemaValidator compiles schema once for repeated validation.
func NewJSONSchemaValidator(schema string) (*JSONSchemaValidator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &JSONSchemaValidator{schema: compiled}, nil
}

// Validate validates a JSON document against the compiled schema.
func (v *JSONSchemaValidator) Validate(data []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return errors.New(strings.Join(msgs, "; "))
}
