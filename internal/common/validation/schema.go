// internal/common/validation/schema.go
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	apperrors "survey-intelligence/internal/common/errors"
	"survey-intelligence/pkg/registry"

	"github.com/xeipuuv/gojsonschema"
)

// MaxBodyBytes bounds every request body read by RequestValidator.
const MaxBodyBytes = 1 << 20

const rootField = "(root)"

// RequestValidator checks raw request bodies against a compiled JSON Schema
// before decoding them into the handler's input type.
type RequestValidator struct {
	schema *gojsonschema.Schema
}

// NewRequestValidator compiles schema once; it is reused for every request.
func NewRequestValidator(schema map[string]interface{}) (*RequestValidator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &RequestValidator{schema: compiled}, nil
}

// ForEndpoint compiles the input schema registered for path.
func ForEndpoint(reg *registry.EndpointRegistry, path string) (*RequestValidator, error) {
	ep, ok := reg.Find(path)
	if !ok {
		return nil, fmt.Errorf("endpoint %s not in registry", path)
	}
	v, err := NewRequestValidator(ep.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("endpoint %s: %w", ep.ID, err)
	}
	return v, nil
}

// DecodeRequest reads the request body and delegates to Decode.
func (v *RequestValidator) DecodeRequest(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apperrors.NewBadRequestError("empty request body")
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return apperrors.NewBadRequestError(err.Error())
	}
	if len(body) > MaxBodyBytes {
		return apperrors.NewBadRequestError(fmt.Sprintf("request body exceeds %d bytes", MaxBodyBytes))
	}
	return v.Decode(body, dst)
}

// Decode validates body and unmarshals it into dst. Unparseable JSON is a
// bad request; schema violations are a validation error listing each field.
func (v *RequestValidator) Decode(body []byte, dst interface{}) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return apperrors.NewBadRequestError("empty request body")
	}
	if !json.Valid(body) {
		return apperrors.NewBadRequestError("request body is not valid JSON")
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperrors.NewBadRequestError(err.Error())
	}
	if !result.Valid() {
		return apperrors.NewValidationError(FieldErrors(result))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.NewBadRequestError(err.Error())
	}
	return nil
}

// FieldErrors flattens a gojsonschema result into API field errors, sorted
// by field for stable output.
func FieldErrors(result *gojsonschema.Result) []apperrors.FieldError {
	out := make([]apperrors.FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		out = append(out, apperrors.FieldError{
			Field:   fieldName(desc),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// fieldName reports a missing required property as the property itself
// rather than its parent object.
func fieldName(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() != "required" {
		return field
	}
	prop, _ := desc.Details()["property"].(string)
	switch {
	case prop == "":
		return field
	case field == rootField || field == "":
		return prop
	case field == prop || strings.HasSuffix(field, "."+prop):
		return field
	default:
		return field + "." + prop
	}
}
