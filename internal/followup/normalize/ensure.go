package normalize

import (
	"fmt"
	"strings"

	"survey-intelligence/internal/models"
)

// SynonymTable lists, per canonical type, the raw labels that may be
// relabeled to it.
type SynonymTable map[models.QuestionType][]string

// DefaultSynonyms is the built-in synonym table.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		models.QuestionTypeReason:        {"why", "reasons", "cause", "motivation"},
		models.QuestionTypeImpact:        {"effects", "effect", "consequences", "consequence", "results", "outcomes", "outcome"},
		models.QuestionTypeComparison:    {"compare", "versus", "vs", "difference", "contrast"},
		models.QuestionTypeExample:       {"examples", "instance", "case", "illustration"},
		models.QuestionTypeClarification: {"clarify", "explain", "meaning"},
		models.QuestionTypeElaboration:   {"elaborate", "details", "detail", "expand"},
	}
}

// Merge returns a copy of t extended with extra labels keyed by canonical
// type name. Unknown type names are an error.
func (t SynonymTable) Merge(extra map[string][]string) (SynonymTable, error) {
	out := make(SynonymTable, len(t))
	for k, v := range t {
		out[k] = append([]string(nil), v...)
	}
	for name, labels := range extra {
		qt, err := models.ParseQuestionType(name)
		if err != nil {
			return nil, fmt.Errorf("synonym table: %w", err)
		}
		for _, l := range labels {
			out[qt] = append(out[qt], strings.ToLower(strings.TrimSpace(l)))
		}
	}
	return out, nil
}

func (t SynonymTable) isSynonym(label string, of models.QuestionType) bool {
	for _, s := range t[of] {
		if s == label {
			return true
		}
	}
	return false
}

// Canonicalize maps a raw label to its canonical type, if it is one or a
// known synonym.
func (t SynonymTable) Canonicalize(raw string) (models.QuestionType, bool) {
	label := strings.ToLower(strings.TrimSpace(raw))
	if qt := models.QuestionType(label); qt.Valid() {
		return qt, true
	}
	for _, qt := range models.AllQuestionTypes {
		if t.isSynonym(label, qt) {
			return qt, true
		}
	}
	return "", false
}

// DefaultTemplates backfill a type the model did not deliver.
var DefaultTemplates = map[models.QuestionType]string{
	models.QuestionTypeReason:        "Why do you think this is the case?",
	models.QuestionTypeClarification: "Could you clarify what you mean by that?",
	models.QuestionTypeElaboration:   "Could you elaborate on that in more detail?",
	models.QuestionTypeExample:       "Can you give a specific example?",
	models.QuestionTypeImpact:        "How has this affected you or others?",
	models.QuestionTypeComparison:    "How does this compare to other experiences you've had?",
}

// Source records how each slot of an ensured set was filled.
type Source string

const (
	SourceExact    Source = "exact"
	SourceSynonym  Source = "synonym"
	SourceTemplate Source = "template"
)

// EnsureQuestions returns exactly one question per requested type, in
// requested order. Each slot takes the first unused candidate with that
// exact type, else the first unused synonym-labelled candidate, else the
// template. Candidates must already be cleaned.
func EnsureQuestions(candidates []models.FollowupQuestion, requested []models.QuestionType, synonyms SynonymTable, templates map[models.QuestionType]string) (models.FollowupSet, []Source) {
	requested = models.ResolveTypes(requested)
	used := make([]bool, len(candidates))

	take := func(match func(models.QuestionType) bool) (string, bool) {
		for i, c := range candidates {
			if used[i] || c.Text == "" || !match(c.Type) {
				continue
			}
			used[i] = true
			return c.Text, true
		}
		return "", false
	}

	set := make(models.FollowupSet, 0, len(requested))
	sources := make([]Source, 0, len(requested))
	for _, t := range requested {
		if text, ok := take(func(ct models.QuestionType) bool { return ct == t }); ok {
			set = append(set, models.FollowupQuestion{Type: t, Text: text})
			sources = append(sources, SourceExact)
			continue
		}
		if text, ok := take(func(ct models.QuestionType) bool { return synonyms.isSynonym(string(ct), t) }); ok {
			set = append(set, models.FollowupQuestion{Type: t, Text: text})
			sources = append(sources, SourceSynonym)
			continue
		}
		set = append(set, models.FollowupQuestion{Type: t, Text: templateFor(templates, t)})
		sources = append(sources, SourceTemplate)
	}
	return set, sources
}

func templateFor(templates map[models.QuestionType]string, t models.QuestionType) string {
	if tpl, ok := templates[t]; ok && tpl != "" {
		return tpl
	}
	if tpl, ok := DefaultTemplates[t]; ok {
		return tpl
	}
	return fmt.Sprintf("Could you tell me more about that (%s)?", t)
}
