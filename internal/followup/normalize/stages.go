package normalize

import (
	"encoding/json"
	"regexp"
	"strings"

	"survey-intelligence/internal/models"
)

// Stage names the parse step that produced the candidates.
type Stage string

const (
	StageWholeJSON    Stage = "whole_json"
	StageEmbeddedJSON Stage = "embedded_json"
	StagePlainText    Stage = "plain_text"
)

type followupsEnvelope struct {
	Followups []rawCandidate `json:"followups"`
}

type rawCandidate struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Question string `json:"question"`
}

func (r rawCandidate) toCandidate() models.FollowupQuestion {
	text := r.Text
	if text == "" {
		text = r.Question
	}
	return models.FollowupQuestion{Type: models.QuestionType(r.Type), Text: text}
}

// ParseWholeJSON parses the trimmed content as one JSON object carrying a
// non-empty followups array.
func ParseWholeJSON(content string) ([]models.FollowupQuestion, bool) {
	return decodeFollowups(strings.TrimSpace(content))
}

// ParseEmbeddedJSON parses the substring between the first '{' and the
// last '}', which handles fenced or prose-wrapped JSON.
func ParseEmbeddedJSON(content string) ([]models.FollowupQuestion, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return decodeFollowups(content[start : end+1])
}

func decodeFollowups(s string) ([]models.FollowupQuestion, bool) {
	var env followupsEnvelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return nil, false
	}
	if len(env.Followups) == 0 {
		return nil, false
	}
	out := make([]models.FollowupQuestion, 0, len(env.Followups))
	for _, raw := range env.Followups {
		out = append(out, raw.toCandidate())
	}
	return out, true
}

var (
	enumerationPattern   = regexp.MustCompile(`^\s*(?:\(?\d+[.):]|[-*•]|#+)\s*`)
	interrogativePattern = regexp.MustCompile(`(?i)\b(?:why|what|how|when|where|who|which|whose|could|can|would)\b`)
)

// ExtractPlainText is the last-resort heuristic: keep question-like lines,
// label each by the first type keyword it mentions (reason by default) and
// return at most maxQuestions candidates.
func ExtractPlainText(content string, minLineLength, maxQuestions int) []models.FollowupQuestion {
	var out []models.FollowupQuestion
	for _, line := range strings.Split(content, "\n") {
		if maxQuestions > 0 && len(out) >= maxQuestions {
			break
		}

		line = strings.TrimSpace(line)
		if len([]rune(line)) < minLineLength {
			continue
		}
		line = strings.TrimSpace(enumerationPattern.ReplaceAllString(line, ""))
		if line == "" || !looksLikeQuestion(line) {
			continue
		}

		out = append(out, models.FollowupQuestion{Type: classifyLine(line), Text: line})
	}
	return out
}

func looksLikeQuestion(line string) bool {
	return strings.Contains(line, "?") || strings.Contains(line, "？") || interrogativePattern.MatchString(line)
}

func classifyLine(line string) models.QuestionType {
	lower := strings.ToLower(line)
	for _, t := range models.AllQuestionTypes {
		if strings.Contains(lower, string(t)) {
			return t
		}
	}
	return models.QuestionTypeReason
}
