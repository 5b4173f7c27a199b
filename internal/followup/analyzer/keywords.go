package analyzer

import (
	"regexp"
	"strings"
	"unicode"
)

// ThemeKeywords maps a lowercase theme name to words that signal it when the
// model's own answer cannot be parsed.
type ThemeKeywords map[string][]string

// DefaultThemeKeywords is the built-in semantic table.
func DefaultThemeKeywords() ThemeKeywords {
	return ThemeKeywords{
		"collaboration":     {"together", "teamwork", "team", "shared", "cooperate", "cooperation", "collaborate", "colleagues"},
		"communication":     {"communicate", "communicating", "talk", "discuss", "discussion", "conversation", "feedback", "listen", "meeting", "email"},
		"leadership":        {"leader", "leaders", "manager", "management", "boss", "supervisor", "mentor", "guidance", "direction"},
		"technology":        {"software", "tool", "tools", "digital", "computer", "system", "systems", "app", "automation", "tech"},
		"work-life balance": {"balance", "family", "overtime", "burnout", "stress", "flexible", "personal time"},
		"career growth":     {"promotion", "career", "growth", "learn", "learning", "training", "development", "skills"},
		"compensation":      {"salary", "pay", "bonus", "benefits", "raise", "wage"},
		"time management":   {"deadline", "deadlines", "schedule", "prioritize", "busy", "workload", "time"},
		"recognition":       {"appreciated", "recognition", "praise", "acknowledged", "valued"},
	}
}

// Merge returns a copy extended with extra keywords; names are lowercased.
func (k ThemeKeywords) Merge(extra map[string][]string) ThemeKeywords {
	out := make(ThemeKeywords, len(k)+len(extra))
	for name, words := range k {
		out[name] = append([]string(nil), words...)
	}
	for name, words := range extra {
		key := strings.ToLower(strings.TrimSpace(name))
		for _, w := range words {
			out[key] = append(out[key], strings.ToLower(strings.TrimSpace(w)))
		}
	}
	return out
}

func (k ThemeKeywords) matches(themeName, lowerText string) bool {
	for _, word := range k[strings.ToLower(strings.TrimSpace(themeName))] {
		if containsTerm(lowerText, word) {
			return true
		}
	}
	return false
}

// containsTerm matches ASCII words on word boundaries and everything else
// (CJK, phrases with punctuation) as a plain substring.
func containsTerm(lowerText, term string) bool {
	if term == "" {
		return false
	}
	if !isASCIIWord(term) {
		return strings.Contains(lowerText, term)
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(term) + `\b`)
	if err != nil {
		return strings.Contains(lowerText, term)
	}
	return re.MatchString(lowerText)
}

func isASCIIWord(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-') {
			return false
		}
	}
	return true
}
