// Package normalize turns free-form model output into a complete, typed
// FollowupSet.
package normalize

import (
	"fmt"
	"strings"

	apperrors "survey-intelligence/internal/common/errors"
	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/common/metrics"
	"survey-intelligence/internal/models"
)

// NormalizationError means the content held nothing usable at all.
type NormalizationError struct {
	Reason  string
	Content string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalization failed: %s", e.Reason)
}

func (e *NormalizationError) AsStandardError() *apperrors.StandardError {
	return apperrors.NewNormalizationError(e.Reason)
}

// Options configures a Normalizer. Zero values fall back to defaults.
type Options struct {
	MinLineLength         int
	MaxPlainTextQuestions int
	Synonyms              SynonymTable
	Templates             map[models.QuestionType]string
}

type Normalizer struct {
	opts   Options
	logger logger.Logger
}

func New(opts Options, log logger.Logger) *Normalizer {
	if opts.MinLineLength <= 0 {
		opts.MinLineLength = 10
	}
	if opts.MaxPlainTextQuestions <= 0 {
		opts.MaxPlainTextQuestions = 3
	}
	if opts.Synonyms == nil {
		opts.Synonyms = DefaultSynonyms()
	}
	if opts.Templates == nil {
		opts.Templates = DefaultTemplates
	}
	return &Normalizer{
		opts:   opts,
		logger: log.With(map[string]interface{}{"component": "normalizer"}),
	}
}

// Synonyms exposes the effective synonym table.
func (n *Normalizer) Synonyms() SynonymTable {
	return n.opts.Synonyms
}

// Normalize runs the parse stages, cleans every candidate and enforces the
// requested cardinality. A nil or empty requested list means all six types.
func (n *Normalizer) Normalize(content string, requested []models.QuestionType) (models.FollowupSet, error) {
	candidates, stage, err := n.Candidates(content)
	if err != nil {
		n.logger.Error("Model output could not be normalized", map[string]interface{}{
			"reason":  err.Error(),
			"content": content,
		})
		return nil, err
	}

	set, sources := EnsureQuestions(candidates, requested, n.opts.Synonyms, n.opts.Templates)

	backfilled := 0
	for _, src := range sources {
		if src != SourceExact {
			metrics.BackfilledQuestions.WithLabelValues(string(src)).Inc()
			backfilled++
		}
	}
	if backfilled > 0 {
		n.logger.Warn("Follow-up set completed with substitutes", map[string]interface{}{
			"stage":      string(stage),
			"backfilled": backfilled,
			"requested":  len(set),
			"content":    content,
		})
	}

	return set, nil
}

// Candidates runs strict JSON, then embedded JSON, then plain-text
// extraction, and returns cleaned candidates from the first stage that
// yields any.
func (n *Normalizer) Candidates(content string) ([]models.FollowupQuestion, Stage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, "", &NormalizationError{Reason: "empty model content", Content: content}
	}

	stage := StageWholeJSON
	raw, ok := ParseWholeJSON(content)
	if !ok {
		stage = StageEmbeddedJSON
		raw, ok = ParseEmbeddedJSON(content)
	}
	if !ok {
		stage = StagePlainText
		raw = ExtractPlainText(content, n.opts.MinLineLength, n.opts.MaxPlainTextQuestions)
		n.logger.Warn("Falling back to plain-text extraction", map[string]interface{}{
			"candidates": len(raw),
			"content":    content,
		})
	}
	metrics.NormalizationStages.WithLabelValues(string(stage)).Inc()

	return cleanCandidates(raw), stage, nil
}

func cleanCandidates(raw []models.FollowupQuestion) []models.FollowupQuestion {
	out := make([]models.FollowupQuestion, 0, len(raw))
	for _, c := range raw {
		text := CleanQuestionText(c.Text)
		if text == "" {
			continue
		}
		out = append(out, models.FollowupQuestion{
			Type: models.QuestionType(strings.ToLower(strings.TrimSpace(string(c.Type)))),
			Text: text,
		})
	}
	return out
}
