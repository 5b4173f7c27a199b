package generator

import (
	"regexp"
	"strings"

	"survey-intelligence/internal/followup/normalize"
)

var questionLabelPattern = regexp.MustCompile(`(?i)^\s*(?:follow-?up\s+)?question\s*[:：]\s*`)

// SingleQuestion pulls one clean question out of a single-question
// completion. JSON-shaped output is accepted too.
func SingleQuestion(content string) string {
	if candidates, ok := normalize.ParseWholeJSON(content); ok {
		return normalize.CleanQuestionText(candidates[0].Text)
	}
	if candidates, ok := normalize.ParseEmbeddedJSON(content); ok {
		return normalize.CleanQuestionText(candidates[0].Text)
	}

	for _, line := range strings.Split(content, "\n") {
		line = questionLabelPattern.ReplaceAllString(strings.TrimSpace(line), "")
		if cleaned := normalize.CleanQuestionText(line); cleaned != "" {
			return cleaned
		}
	}
	return ""
}
