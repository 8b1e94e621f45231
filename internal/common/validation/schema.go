package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

var compiled = map[string]*gojsonschema.Schema{}

// Validate checks a Go value (anything encoding/json can marshal) against a
// JSON schema document.
func Validate(schemaJSON string, document interface{}) (*ValidationResult, error) {
	schema, ok := compiled[schemaJSON]
	if !ok {
		var err error
		schema, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
		if err != nil {
			return nil, fmt.Errorf("invalid schema: %w", err)
		}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return out, nil
}

func init() {
	for _, s := range []string{LoanRequestSchema} {
		if schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s)); err == nil {
			compiled[s] = schema
		}
	}
}

// ValidateLoanRequest gates a nested loan payload before it is sent to the
// backend.
func ValidateLoanRequest(request interface{}) (*ValidationResult, error) {
	return Validate(LoanRequestSchema, request)
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}
