package analyzer

import (
	"context"
	"fmt"
	"strings"

	"survey-intelligence/internal/followup/cache"
	"survey-intelligence/internal/followup/completion"
	"survey-intelligence/internal/followup/prompt"
)

const (
	verdictInformative    = "1"
	verdictNonInformative = "0"
)

// DetectInformativeness reports whether answer says something relevant to
// question. Verdicts are cached per (question, answer, language).
func (a *Analyzer) DetectInformativeness(ctx context.Context, question, answer, language string) (bool, error) {
	if strings.TrimSpace(answer) == "" {
		return false, nil
	}

	key := cache.Fingerprint("informativeness", question, answer, strings.ToLower(language))
	if v, ok := a.verdicts.Get(ctx, key); ok {
		return string(v) == verdictInformative, nil
	}

	resp, err := a.completer.Complete(ctx, prompt.BuildInformativenessPrompt(question, answer, language), completion.VerdictParams)
	if err != nil {
		return false, fmt.Errorf("detect informativeness: %w", err)
	}

	informative := strings.TrimSpace(resp.Content()) == verdictInformative
	verdict := verdictNonInformative
	if informative {
		verdict = verdictInformative
	}
	a.verdicts.Put(ctx, key, []byte(verdict))

	a.logger.Debug("Informativeness verdict", map[string]interface{}{
		"language":    language,
		"informative": informative,
		"raw":         resp.Content(),
	})
	return informative, nil
}
