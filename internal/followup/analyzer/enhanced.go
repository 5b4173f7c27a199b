package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"survey-intelligence/internal/followup/completion"
	"survey-intelligence/internal/followup/normalize"
	"survey-intelligence/internal/followup/prompt"
	"survey-intelligence/internal/models"

	"golang.org/x/sync/errgroup"
)

// EnhancedRequest carries the inputs shared by the gated flows.
type EnhancedRequest struct {
	Question string
	Answer   string
	Type     models.QuestionType
	Language string
}

// EnhancedResult is the informativeness-gated single question. Question is
// empty when the answer is not informative.
type EnhancedResult struct {
	Informative bool
	Question    string
}

// GenerateEnhancedMultilingual generates a question only for informative answers.
func (a *Analyzer) GenerateEnhancedMultilingual(ctx context.Context, req EnhancedRequest) (*EnhancedResult, error) {
	informative, err := a.DetectInformativeness(ctx, req.Question, req.Answer, req.Language)
	if err != nil {
		return nil, err
	}
	if !informative {
		return &EnhancedResult{Informative: false}, nil
	}

	q, err := a.questions.GenerateMultilingual(ctx, req.Question, req.Answer, req.Type, req.Language)
	if err != nil {
		return nil, err
	}
	return &EnhancedResult{Informative: true, Question: q}, nil
}

type ThemeEnhancedRequest struct {
	EnhancedRequest
	ThemeEnabled bool
	Themes       []models.Theme
}

// ThemeEnhancedResult reports which branch produced the question: exactly
// one of DetectedTheme and HighestImportanceTheme is set for an informative,
// theme-enabled request.
type ThemeEnhancedResult struct {
	Informative            bool
	Question               string
	Explanation            string
	DetectedTheme          *models.ThemeMatch
	HighestImportanceTheme *models.Theme
}

// GenerateThemeEnhanced runs informativeness and theme detection
// concurrently, joins both, then steers the question toward the detected
// theme or toward the most important unmentioned one.
func (a *Analyzer) GenerateThemeEnhanced(ctx context.Context, req ThemeEnhancedRequest) (*ThemeEnhancedResult, error) {
	if !req.ThemeEnabled {
		q, err := a.questions.GenerateMultilingual(ctx, req.Question, req.Answer, req.Type, req.Language)
		if err != nil {
			return nil, err
		}
		return &ThemeEnhancedResult{Informative: true, Question: q}, nil
	}

	if len(req.Themes) == 0 {
		return nil, &ThemeParameterError{Reason: "at least one theme is required when theme analysis is enabled"}
	}

	var (
		informative bool
		match       *models.ThemeMatch
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := a.DetectInformativeness(gctx, req.Question, req.Answer, req.Language)
		informative = v
		return err
	})
	g.Go(func() error {
		m, err := a.DetectTheme(gctx, req.Answer, req.Themes)
		match = m
		return err
	})
	err := g.Wait()
	a.recordFanout(ctx, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if !informative {
		a.logger.Info("Answer not informative, skipping theme question", map[string]interface{}{
			"language": req.Language,
		})
		return &ThemeEnhancedResult{Informative: false}, nil
	}

	result := &ThemeEnhancedResult{Informative: true}
	var (
		p     string
		focus models.Theme
	)
	if match != nil {
		focus = models.Theme{Name: match.Name, Importance: match.Importance}
		p = prompt.BuildThemeQuestionPrompt(req.Question, req.Answer, req.Type, req.Language, focus)
		result.DetectedTheme = match
	} else {
		focus, _ = models.HighestImportance(req.Themes)
		p = prompt.BuildMissingThemePrompt(req.Question, req.Answer, req.Type, req.Language, focus)
		result.HighestImportanceTheme = &focus
	}

	resp, err := a.completer.Complete(ctx, p, completion.QuestionParams)
	if err != nil {
		return nil, fmt.Errorf("generate theme question: %w", err)
	}

	question, explanation := ParseQuestionExplanation(resp.Content())
	if question == "" {
		a.logger.Error("Theme question missing from completion", map[string]interface{}{
			"theme":   focus.Name,
			"content": resp.Content(),
		})
		return nil, &normalize.NormalizationError{Reason: "model returned no question text", Content: resp.Content()}
	}
	if explanation == "" {
		explanation = fmt.Sprintf("This question explores the '%s' theme.", focus.Name)
	}

	result.Question = question
	result.Explanation = explanation

	a.logger.Info("Generated theme-enhanced question", map[string]interface{}{
		"theme":         focus.Name,
		"themeDetected": match != nil,
	})
	return result, nil
}

func (a *Analyzer) recordFanout(ctx context.Context, d time.Duration, err error) {
	if a.fanout == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	a.fanout.RecordFanout(ctx, d, outcome)
}

var (
	questionLabel    = regexp.MustCompile(`(?i)question\s*[:：]`)
	explanationLabel = regexp.MustCompile(`(?i)explanation\s*[:：]`)
)

// ParseQuestionExplanation splits "Question: ... Explanation: ..." output.
// Without a Question label the first non-empty line is the question.
func ParseQuestionExplanation(content string) (question, explanation string) {
	qPart := content
	if loc := explanationLabel.FindStringIndex(content); loc != nil {
		qPart = content[:loc[0]]
		explanation = normalize.CleanQuestionText(content[loc[1]:])
	}
	if loc := questionLabel.FindStringIndex(qPart); loc != nil {
		qPart = qPart[loc[1]:]
	}

	for _, line := range strings.Split(qPart, "\n") {
		if q := normalize.CleanQuestionText(line); q != "" {
			return q, explanation
		}
	}
	return "", explanation
}
