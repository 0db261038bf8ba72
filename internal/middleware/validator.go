package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformedJSON means the body is not JSON at all.
var ErrMalformedJSON = errors.New("request body is not valid JSON")

// SchemaError lists every schema violation of a request body.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "request body failed validation: " + strings.Join(e.Problems, "; ")
}

// MustSchema compiles a JSON schema literal and panics on a bad schema.
func MustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return s
}

// ValidateJSON checks body against schema. It returns ErrMalformedJSON when
// the body does not parse and *SchemaError when it parses but does not conform.
func ValidateJSON(schema *gojsonschema.Schema, body []byte) error {
	if !json.Valid(body) {
		return ErrMalformedJSON
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return &SchemaError{Problems: errs}
	}
	return nil
}
