// internal/handlers/followup/generate-followup/handler.go
package generatefollowup

import (
	"context"
	"fmt"
	"net/http"

	apperrors "survey-intelligence/internal/common/errors"
	httpx "survey-intelligence/internal/common/http"
	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/common/validation"
	"survey-intelligence/internal/models"
)

const Route = "/generate-followup"

type Generator interface {
	GenerateFollowups(ctx context.Context, question, answer string, types []models.QuestionType) (models.FollowupSet, error)
}

type Handler struct {
	config    *Config
	validator *validation.RequestValidator
	generator Generator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, validator *validation.RequestValidator, generator Generator, log logger.Logger) *Handler {
	l := log.With(map[string]interface{}{"route": Route})
	return &Handler{
		config:    config,
		validator: validator,
		generator: generator,
		errors:    apperrors.NewErrorHandler(l),
		logger:    l,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := h.validator.DecodeRequest(r, &input); err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, output)
}

// Execute returns exactly one question per allowed type, or all six types
// when none are given.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	types, err := parseAllowedTypes(input.AllowedTypes)
	if err != nil {
		return nil, err
	}

	set, err := h.generator.GenerateFollowups(ctx, input.Question, input.Response, types)
	if err != nil {
		return nil, err
	}

	h.logger.Info("follow-ups generated", map[string]interface{}{
		"allowedTypes": len(types),
		"followups":    len(set),
	})
	return &Output{Followups: set}, nil
}

func parseAllowedTypes(raw []string) ([]models.QuestionType, error) {
	types := make([]models.QuestionType, 0, len(raw))
	seen := make(map[models.QuestionType]bool, len(raw))
	var fields []apperrors.FieldError
	for i, s := range raw {
		field := fmt.Sprintf("allowed_types.%d", i)
		t, err := models.ParseQuestionType(s)
		if err != nil {
			fields = append(fields, apperrors.FieldError{Field: field, Message: err.Error(), Code: "ENUM"})
			continue
		}
		if seen[t] {
			fields = append(fields, apperrors.FieldError{Field: field, Message: fmt.Sprintf("duplicate type %q", t), Code: "UNIQUE"})
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}
	return types, nil
}
