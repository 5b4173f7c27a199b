package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"survey-intelligence/internal/followup/completion"
	"survey-intelligence/internal/followup/prompt"
	"survey-intelligence/internal/models"
)

type themeVerdict struct {
	ThemeName string `json:"theme_name"`
}

// DetectTheme returns the supplied theme the answer addresses, or nil.
// Importance always comes from the caller's list, not the model.
func (a *Analyzer) DetectTheme(ctx context.Context, answer string, themes []models.Theme) (*models.ThemeMatch, error) {
	if len(themes) == 0 {
		return nil, nil
	}

	resp, err := a.completer.Complete(ctx, prompt.BuildThemeDetectionPrompt(answer, themes), completion.ThemeParams)
	if err != nil {
		return nil, fmt.Errorf("detect theme: %w", err)
	}

	match, parsed := parseThemeVerdict(resp.Content(), themes)
	if parsed {
		return match, nil
	}

	a.logger.Warn("Theme verdict unparseable, matching locally", map[string]interface{}{
		"content": resp.Content(),
	})
	return a.matchLocally(answer, themes), nil
}

// parseThemeVerdict reads {"theme_name": ...} from the whole content or the
// outermost braces. A name outside the supplied list counts as unparsed.
func parseThemeVerdict(content string, themes []models.Theme) (*models.ThemeMatch, bool) {
	verdict, ok := decodeThemeVerdict(strings.TrimSpace(content))
	if !ok {
		start, end := strings.Index(content, "{"), strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return nil, false
		}
		if verdict, ok = decodeThemeVerdict(content[start : end+1]); !ok {
			return nil, false
		}
	}

	name := strings.TrimSpace(verdict.ThemeName)
	if name == "" || strings.EqualFold(name, "none") {
		return nil, true
	}
	th, found := models.FindTheme(themes, name)
	if !found {
		return nil, false
	}
	return &models.ThemeMatch{Name: th.Name, Importance: th.Importance}, true
}

func decodeThemeVerdict(s string) (themeVerdict, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return themeVerdict{}, false
	}
	nameRaw, ok := raw["theme_name"]
	if !ok {
		return themeVerdict{}, false
	}
	var v themeVerdict
	if err := json.Unmarshal(nameRaw, &v.ThemeName); err != nil {
		return themeVerdict{}, false
	}
	return v, true
}

// matchLocally checks theme names first, preferring the highest importance
// among those present, then the keyword table in supplied order.
func (a *Analyzer) matchLocally(answer string, themes []models.Theme) *models.ThemeMatch {
	lower := strings.ToLower(answer)

	var best *models.Theme
	for i := range themes {
		name := strings.ToLower(strings.TrimSpace(themes[i].Name))
		if name == "" || !strings.Contains(lower, name) {
			continue
		}
		if best == nil || themes[i].Importance > best.Importance {
			best = &themes[i]
		}
	}
	if best != nil {
		return &models.ThemeMatch{Name: best.Name, Importance: best.Importance}
	}

	for _, th := range themes {
		if a.keywords.matches(th.Name, lower) {
			return &models.ThemeMatch{Name: th.Name, Importance: th.Importance}
		}
	}
	return nil
}
