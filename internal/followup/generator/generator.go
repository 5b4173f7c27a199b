// Package generator produces follow-up questions from a survey answer.
package generator

import (
	"context"
	"fmt"

	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/followup/completion"
	"survey-intelligence/internal/followup/normalize"
	"survey-intelligence/internal/followup/prompt"
	"survey-intelligence/internal/models"
)

// Completer is the subset of the completion client the generator needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, params completion.Params) (*completion.ChatCompletion, error)
}

type Generator struct {
	completer  Completer
	normalizer *normalize.Normalizer
	logger     logger.Logger
}

func New(completer Completer, normalizer *normalize.Normalizer, log logger.Logger) *Generator {
	return &Generator{
		completer:  completer,
		normalizer: normalizer,
		logger:     log.With(map[string]interface{}{"component": "generator"}),
	}
}

// GenerateFollowups returns one question per requested type, or all six
// when types is empty.
func (g *Generator) GenerateFollowups(ctx context.Context, question, answer string, types []models.QuestionType) (models.FollowupSet, error) {
	params := completion.FollowupSetParams
	params.SystemPrompt = prompt.SystemPrompt

	resp, err := g.completer.Complete(ctx, prompt.BuildFollowupPrompt(question, answer, types), params)
	if err != nil {
		return nil, fmt.Errorf("generate followups: %w", err)
	}

	set, err := g.normalizer.Normalize(resp.Content(), types)
	if err != nil {
		return nil, fmt.Errorf("generate followups: %w", err)
	}

	g.logger.Info("Generated follow-up set", map[string]interface{}{
		"requested": len(models.ResolveTypes(types)),
		"returned":  len(set),
	})
	return set, nil
}

// GenerateReason returns the reason-type question from a one-type set.
func (g *Generator) GenerateReason(ctx context.Context, question, answer string) (string, error) {
	set, err := g.GenerateFollowups(ctx, question, answer, []models.QuestionType{models.QuestionTypeReason})
	if err != nil {
		return "", err
	}
	q, _ := set.First(models.QuestionTypeReason)
	return q.Text, nil
}

// GenerateMultilingual returns one question of the given intent written in
// language.
func (g *Generator) GenerateMultilingual(ctx context.Context, question, answer string, qType models.QuestionType, language string) (string, error) {
	resp, err := g.completer.Complete(ctx, prompt.BuildMultilingualPrompt(question, answer, qType, language), completion.QuestionParams)
	if err != nil {
		return "", fmt.Errorf("generate multilingual question: %w", err)
	}

	text := SingleQuestion(resp.Content())
	if text == "" {
		err := &normalize.NormalizationError{Reason: "model returned no question text", Content: resp.Content()}
		g.logger.Error("Empty multilingual question", map[string]interface{}{
			"language": language,
			"type":     string(qType),
			"content":  resp.Content(),
		})
		return "", err
	}
	return text, nil
}
