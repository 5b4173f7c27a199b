// internal/handlers/theme/generate-theme-enhanced/handler.go
package generatethemeenhanced

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

const Route = "/generate-theme-enhanced"

type Analyzer interface {
	GenerateThemeEnhanced(ctx context.Context, req analyzer.ThemeEnhancedRequest) (*analyzer.ThemeEnhancedResult, error)
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
	if input.Theme != ThemeEnabled && input.Theme != ThemeDisabled {
		return nil, apperrors.NewValidationError([]apperrors.FieldError{{Field: "theme", Message: `must be "Yes" or "No"`, Code: "ENUM"}})
	}

	req := analyzer.ThemeEnhancedRequest{
		EnhancedRequest: analyzer.EnhancedRequest{
			Question: input.Question,
			Answer:   input.Response,
			Type:     qType,
			Language: input.Language,
		},
		ThemeEnabled: input.Theme == ThemeEnabled,
	}
	if input.ThemeParameters != nil {
		req.Themes = input.ThemeParameters.Themes
	}

	res, err := h.analyzer.GenerateThemeEnhanced(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &Output{
		OriginalQuestion: input.Question,
		OriginalResponse: input.Response,
		Type:             string(qType),
		Language:         input.Language,
		Theme:            input.Theme,
	}
	if !res.Informative {
		h.logger.Info("theme-enhanced skipped non-informative answer", map[string]interface{}{
			"language": input.Language,
		})
		return out, nil
	}

	out.Informative = 1
	out.Question = stringPtr(res.Question)
	if res.Explanation != "" {
		out.Explanation = stringPtr(res.Explanation)
	}
	if res.DetectedTheme != nil {
		out.DetectedTheme = stringPtr(res.DetectedTheme.Name)
		importance := res.DetectedTheme.Importance
		out.ThemeImportance = &importance
	}
	if res.HighestImportanceTheme != nil {
		out.HighestImportanceTheme = stringPtr(res.HighestImportanceTheme.Name)
	}

	h.logger.Info("theme-enhanced question generated", map[string]interface{}{
		"theme":         input.Theme,
		"themeDetected": res.DetectedTheme != nil,
		"language":      input.Language,
	})
	return out, nil
}

func stringPtr(s string) *string {
	return &s
}
