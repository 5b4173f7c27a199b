// internal/handlers/multilingual/generate-enhanced-multilingual/handler.go
package generateenhancedmultilingual

import (
	"context"
	"net/http"

	apperrors "survey-intelligence/internal/common/errors"
	httpx "survey-intelligence/internal/common/http"
	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/common/validation"
	"survey-intelligence/internal/followup/analyzer"
	"survey-intelligence/internal/models"
)

const Route = "/generate-enhanced-multilingual"

type Analyzer interface {
	GenerateEnhancedMultilingual(ctx context.Context, req analyzer.EnhancedRequest) (*analyzer.EnhancedResult, error)
}

type Handler struct {
	config    *Config
	validator *validation.RequestValidator
	analyzer  Analyzer
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, validator *validation.RequestValidator, a Analyzer, log logger.Logger) *Handler {
	l := log.With(map[string]interface{}{"route": Route})
	return &Handler{
		config:    config,
		validator: validator,
		analyzer:  a,
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

	res, err := h.analyzer.GenerateEnhancedMultilingual(ctx, analyzer.EnhancedRequest{
		Question: input.Question,
		Answer:   input.Response,
		Type:     qType,
		Language: input.Language,
	})
	if err != nil {
		return nil, err
	}

	out := &Output{
		OriginalQuestion: input.Question,
		OriginalResponse: input.Response,
		Type:             string(qType),
		Language:         input.Language,
	}
	if res.Informative {
		out.Informative = 1
		q := res.Question
		out.Question = &q
	}

	h.logger.Info("enhanced multilingual handled", map[string]interface{}{
		"informative": out.Informative,
		"language":    input.Language,
	})
	return out, nil
}
