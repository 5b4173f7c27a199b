// internal/handlers/followup/generate-followup/handler_test.go
package generatefollowup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "survey-intelligence/internal/common/errors"
	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/common/validation"
	"survey-intelligence/internal/followup/completion"
	"survey-intelligence/internal/models"
	"survey-intelligence/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

type stubGenerator struct {
	gotTypes []models.QuestionType
	deadline bool
	set      models.FollowupSet
	err      error
}

func (s *stubGenerator) GenerateFollowups(ctx context.Context, _, _ string, types []models.QuestionType) (models.FollowupSet, error) {
	s.gotTypes = types
	_, s.deadline = ctx.Deadline()
	return s.set, s.err
}

func newTestHandler(t *testing.T, gen Generator) *Handler {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	v, err := validation.ForEndpoint(reg, Route)
	require.NoError(t, err)
	return NewHandler(LoadConfig(reg), v, gen, logger.NewTestLogger(t))
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, Route, strings.NewReader(body)))
	return rec
}

// ==========================
// Tests
// ==========================

func TestLoadConfig(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, LoadConfig(reg).Timeout)
	assert.Equal(t, defaultTimeout, LoadConfig(&registry.EndpointRegistry{}).Timeout)
}

func TestServeHTTP_Success(t *testing.T) {
	gen := &stubGenerator{set: models.FollowupSet{
		{Type: models.QuestionTypeReason, Text: "Why do you struggle with time management?"},
	}}
	rec := post(newTestHandler(t, gen), `{"question":"What challenges do you face at work?","response":"I struggle with time management.","allowed_types":["reason"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"followups":[{"type":"reason","text":"Why do you struggle with time management?"}]}`, rec.Body.String())
	assert.Equal(t, []models.QuestionType{models.QuestionTypeReason}, gen.gotTypes)
	assert.True(t, gen.deadline)
}

func TestServeHTTP_NoAllowedTypes(t *testing.T) {
	gen := &stubGenerator{}
	rec := post(newTestHandler(t, gen), `{"question":"Q?","response":"A."}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, gen.gotTypes)
}

func TestServeHTTP_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		genErr   error
		status   int
		wantCode apperrors.ErrorCode
	}{
		{"malformed json", `{"question":`, nil, http.StatusBadRequest, apperrors.ErrCodeBadRequest},
		{"missing response", `{"question":"Q?"}`, nil, http.StatusUnprocessableEntity, apperrors.ErrCodeValidationFailed},
		{"unknown type", `{"question":"Q?","response":"A","allowed_types":["why"]}`, nil, http.StatusUnprocessableEntity, apperrors.ErrCodeValidationFailed},
		{
			"upstream status", `{"question":"Q?","response":"A"}`,
			&completion.CompletionError{Kind: completion.KindHTTPStatus, StatusCode: 500},
			http.StatusBadGateway, apperrors.ErrCodeCompletionHTTPError,
		},
		{
			"upstream timeout", `{"question":"Q?","response":"A"}`,
			&completion.CompletionError{Kind: completion.KindTimeout},
			http.StatusGatewayTimeout, apperrors.ErrCodeCompletionTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(newTestHandler(t, &stubGenerator{err: tt.genErr}), tt.body)
			require.Equal(t, tt.status, rec.Code)

			var body apperrors.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Detail)
		})
	}
}

func TestExecute_RejectsDuplicateTypes(t *testing.T) {
	gen := &stubGenerator{}
	_, err := newTestHandler(t, gen).Execute(context.Background(), &Input{
		Question:     "Q?",
		Response:     "A",
		AllowedTypes: []string{"Impact", "impact"},
	})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	require.Len(t, stdErr.Fields, 1)
	assert.Equal(t, "allowed_types.1", stdErr.Fields[0].Field)
	assert.Nil(t, gen.gotTypes)
}
