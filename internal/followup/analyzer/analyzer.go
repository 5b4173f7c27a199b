// Package analyzer classifies survey answers (informativeness, theme) and
// orchestrates the gated and theme-steered question flows.
package analyzer

import (
	"context"
	"time"

	apperrors "survey-intelligence/internal/common/errors"
	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/followup/cache"
	"survey-intelligence/internal/followup/completion"
	"survey-intelligence/internal/models"
)

// Completer is the subset of the completion client the analyzer needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, params completion.Params) (*completion.ChatCompletion, error)
}

// QuestionGenerator produces one question in a given language.
type QuestionGenerator interface {
	GenerateMultilingual(ctx context.Context, question, answer string, qType models.QuestionType, language string) (string, error)
}

// FanoutRecorder receives the duration of each informativeness/theme join.
type FanoutRecorder interface {
	RecordFanout(ctx context.Context, duration time.Duration, outcome string)
}

// ThemeParameterError means theme analysis was requested without themes.
type ThemeParameterError struct {
	Reason string
}

func (e *ThemeParameterError) Error() string {
	return "theme parameters missing: " + e.Reason
}

func (e *ThemeParameterError) AsStandardError() *apperrors.StandardError {
	return apperrors.NewThemeParametersMissingError(e.Reason)
}

type Options struct {
	Keywords ThemeKeywords
	Fanout   FanoutRecorder
}

type Analyzer struct {
	completer Completer
	questions QuestionGenerator
	verdicts  cache.Cache
	keywords  ThemeKeywords
	fanout    FanoutRecorder
	logger    logger.Logger
}

func New(completer Completer, questions QuestionGenerator, verdicts cache.Cache, opts Options, log logger.Logger) *Analyzer {
	if opts.Keywords == nil {
		opts.Keywords = DefaultThemeKeywords()
	}
	return &Analyzer{
		completer: completer,
		questions: questions,
		verdicts:  verdicts,
		keywords:  opts.Keywords,
		fanout:    opts.Fanout,
		logger:    log.With(map[string]interface{}{"component": "analyzer"}),
	}
}
