package normalize

import (
	"regexp"
	"strings"
)

// Known artifact patterns left in question text by models that half-emit
// JSON. Every entry here has a matching case in cleanup_test.go.
var (
	// 1. a leading key fragment such as `"text": "` (and anything before it)
	keyFragmentPattern = regexp.MustCompile(`^.*?"(?:text|question)"\s*:\s*`)

	// 2. escaped quotes and 3. escaped whitespace
	escapeReplacer = strings.NewReplacer(`\"`, `"`, `\n`, " ", `\r`, " ", `\t`, " ")

	// 4. trailing JSON closers after the closing quote, e.g. `"},`
	trailingCloserPattern = regexp.MustCompile(`(["'])[\s,}\]]+$`)
)

// 5. wrapping quote characters, stripped from both ends
const wrappingQuotes = "\"'`“”‘’"

// CleanQuestionText removes known JSON/quoting artifacts from a question.
// It is applied until a fixpoint, so CleanQuestionText is idempotent.
func CleanQuestionText(s string) string {
	for {
		next := cleanOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func cleanOnce(s string) string {
	s = strings.TrimSpace(s)
	s = keyFragmentPattern.ReplaceAllString(s, "")
	s = escapeReplacer.Replace(s)
	s = trailingCloserPattern.ReplaceAllString(s, "$1")
	s = strings.Trim(s, wrappingQuotes+" ")
	return strings.Join(strings.Fields(s), " ")
}
