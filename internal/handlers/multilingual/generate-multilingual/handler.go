// internal/handlers/multilingual/generate-multilingual/handler.go
package generatemultilingual

import (
	"context"
	"net/http"

	apperrors "survey-intelligence/internal/common/errors"
	httpx "survey-intelligence/internal/common/http"
	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/common/validation"
	"survey-intelligence/internal/models"
)

const Route = "/generate-multilingual"

type Generator interface {
	GenerateMultilingual(ctx context.Context, question, answer string, qType models.QuestionType, language string) (string, error)
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	qType, err := models.ParseQuestionType(input.Type)
	if err != nil {
		return nil, apperrors.NewValidationError([]apperrors.FieldError{{Field: "type", Message: err.Error(), Code: "ENUM"}})
	}

	q, err := h.generator.GenerateMultilingual(ctx, input.Question, input.Response, qType, input.Language)
	if err != nil {
		return nil, err
	}

	h.logger.Info("multilingual question generated", map[string]interface{}{
		"type":     string(qType),
		"language": input.Language,
	})
	return &Output{
		Question:         q,
		OriginalQuestion: input.Question,
		OriginalResponse: input.Response,
		Type:             string(qType),
		Language:         input.Language,
	}, nil
}
