package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "survey-intelligence/internal/common/errors"
	"survey-intelligence/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type themeInput struct {
	Question        string `json:"question"`
	Response        string `json:"response"`
	Type            string `json:"type"`
	Language        string `json:"language"`
	Theme           string `json:"theme"`
	ThemeParameters *struct {
		Themes []struct {
			Name       string `json:"name"`
			Importance int    `json:"importance"`
		} `json:"themes"`
	} `json:"theme_parameters"`
}

func themeValidator(t *testing.T) *RequestValidator {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	v, err := ForEndpoint(reg, "/generate-theme-enhanced")
	require.NoError(t, err)
	return v
}

func asStandard(t *testing.T, err error) *apperrors.StandardError {
	t.Helper()
	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	return stdErr
}

func fieldsOf(stdErr *apperrors.StandardError) []string {
	out := make([]string, 0, len(stdErr.Fields))
	for _, f := range stdErr.Fields {
		out = append(out, f.Field)
	}
	return out
}

// ==========================
// Decode
// ==========================

func TestDecode_Valid(t *testing.T) {
	v := themeValidator(t)

	var in themeInput
	err := v.Decode([]byte(`{
		"question": "What challenges do you face?",
		"response": "My manager is absent.",
		"type": "reason",
		"language": "English",
		"theme": "Yes",
		"theme_parameters": {"themes": [{"name": "leadership", "importance": 90}]}
	}`), &in)
	require.NoError(t, err)
	assert.Equal(t, "Yes", in.Theme)
	require.NotNil(t, in.ThemeParameters)
	assert.Equal(t, 90, in.ThemeParameters.Themes[0].Importance)
}

func TestDecode_NullThemeParameters(t *testing.T) {
	var in themeInput
	err := themeValidator(t).Decode([]byte(`{"question":"Q","response":"A","type":"impact","language":"French","theme":"No","theme_parameters":null}`), &in)
	require.NoError(t, err)
	assert.Nil(t, in.ThemeParameters)
}

func TestDecode_SchemaViolations(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing question", `{"response":"A","type":"reason","language":"English","theme":"No"}`, "question"},
		{"bad type", `{"question":"Q","response":"A","type":"why","language":"English","theme":"No"}`, "type"},
		{"bad theme flag", `{"question":"Q","response":"A","type":"reason","language":"English","theme":"yes"}`, "theme"},
		{"importance above range", `{"question":"Q","response":"A","type":"reason","language":"English","theme":"Yes","theme_parameters":{"themes":[{"name":"x","importance":101}]}}`, "theme_parameters.themes.0.importance"},
		{"importance not integer", `{"question":"Q","response":"A","type":"reason","language":"English","theme":"Yes","theme_parameters":{"themes":[{"name":"x","importance":50.5}]}}`, "theme_parameters.themes.0.importance"},
		{"empty themes", `{"question":"Q","response":"A","type":"reason","language":"English","theme":"Yes","theme_parameters":{"themes":[]}}`, "theme_parameters.themes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in themeInput
			stdErr := asStandard(t, themeValidator(t).Decode([]byte(tt.body), &in))
			assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
			assert.Contains(t, fieldsOf(stdErr), tt.wantField)
		})
	}
}

func TestDecode_TooManyThemes(t *testing.T) {
	themes := make([]string, 11)
	for i := range themes {
		themes[i] = `{"name":"t","importance":1}`
	}
	body := `{"question":"Q","response":"A","type":"reason","language":"English","theme":"Yes","theme_parameters":{"themes":[` + strings.Join(themes, ",") + `]}}`

	var in themeInput
	stdErr := asStandard(t, themeValidator(t).Decode([]byte(body), &in))
	assert.Contains(t, fieldsOf(stdErr), "theme_parameters.themes")
}

func TestDecode_BadRequest(t *testing.T) {
	for _, body := range []string{"", "   ", "{not json", `{"question": "Q"`} {
		var in themeInput
		stdErr := asStandard(t, themeValidator(t).Decode([]byte(body), &in))
		assert.Equal(t, apperrors.ErrCodeBadRequest, stdErr.Code, body)
	}
}

func TestAllowedTypesMustBeUnique(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	v, err := ForEndpoint(reg, "/generate-followup")
	require.NoError(t, err)

	var in map[string]interface{}
	require.NoError(t, v.Decode([]byte(`{"question":"Q","response":"A","allowed_types":["reason","impact"]}`), &in))
	require.NoError(t, v.Decode([]byte(`{"question":"Q","response":"A","allowed_types":null}`), &in))

	stdErr := asStandard(t, v.Decode([]byte(`{"question":"Q","response":"A","allowed_types":["reason","reason"]}`), &in))
	assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
	assert.Contains(t, fieldsOf(stdErr), "allowed_types")
}

func TestDecodeRequest_BodyLimit(t *testing.T) {
	v := themeValidator(t)
	req := httptest.NewRequest("POST", "/generate-theme-enhanced", strings.NewReader(strings.Repeat(" ", MaxBodyBytes+10)))

	var in themeInput
	stdErr := asStandard(t, v.DecodeRequest(req, &in))
	assert.Equal(t, apperrors.ErrCodeBadRequest, stdErr.Code)
	assert.Contains(t, stdErr.Details, "exceeds")
}

func TestForEndpoint_Unknown(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	_, err = ForEndpoint(reg, "/nope")
	assert.ErrorContains(t, err, "not in registry")
}

func TestNewRequestValidator_InvalidSchema(t *testing.T) {
	_, err := NewRequestValidator(map[string]interface{}{"type": 42})
	assert.Error(t, err)
}
