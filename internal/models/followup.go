package models

import (
	"fmt"
	"strings"
)

// QuestionType is the intent of a follow-up question.
type QuestionType string

const (
	QuestionTypeReason        QuestionType = "reason"
	QuestionTypeClarification QuestionType = "clarification"
	QuestionTypeElaboration   QuestionType = "elaboration"
	QuestionTypeExample       QuestionType = "example"
	QuestionTypeImpact        QuestionType = "impact"
	QuestionTypeComparison    QuestionType = "comparison"
)

// AllQuestionTypes is the canonical set in canonical order.
var AllQuestionTypes = []QuestionType{
	QuestionTypeReason,
	QuestionTypeClarification,
	QuestionTypeElaboration,
	QuestionTypeExample,
	QuestionTypeImpact,
	QuestionTypeComparison,
}

var questionTypeDescriptions = map[QuestionType]string{
	QuestionTypeReason:        "Ask why the respondent holds this view",
	QuestionTypeClarification: "Ask what the respondent means",
	QuestionTypeElaboration:   "Ask for more detail",
	QuestionTypeExample:       "Ask for a specific example",
	QuestionTypeImpact:        "Ask about effects or consequences",
	QuestionTypeComparison:    "Ask how it compares to something else",
}

func (t QuestionType) Valid() bool {
	_, ok := questionTypeDescriptions[t]
	return ok
}

func (t QuestionType) Description() string {
	return questionTypeDescriptions[t]
}

func (t QuestionType) String() string {
	return string(t)
}

// ParseQuestionType accepts any case and surrounding whitespace.
func ParseQuestionType(s string) (QuestionType, error) {
	t := QuestionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown question type %q", s)
	}
	return t, nil
}

// ResolveTypes returns requested, or every canonical type when requested is empty.
func ResolveTypes(requested []QuestionType) []QuestionType {
	if len(requested) == 0 {
		out := make([]QuestionType, len(AllQuestionTypes))
		copy(out, AllQuestionTypes)
		return out
	}
	return requested
}

// FollowupQuestion is one generated question tagged with its intent.
type FollowupQuestion struct {
	Type QuestionType `json:"type"`
	Text string       `json:"text"`
}

// FollowupSet is ordered and matches the requested type list one-to-one.
type FollowupSet []FollowupQuestion

func (s FollowupSet) Types() []QuestionType {
	out := make([]QuestionType, len(s))
	for i, q := range s {
		out[i] = q.Type
	}
	return out
}

// First returns the first question of the given type.
func (s FollowupSet) First(t QuestionType) (FollowupQuestion, bool) {
	for _, q := range s {
		if q.Type == t {
			return q, true
		}
	}
	return FollowupQuestion{}, false
}
