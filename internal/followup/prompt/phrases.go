package prompt

import (
	"strings"

	"survey-intelligence/internal/models"
)

var typeHints = map[models.QuestionType]string{
	models.QuestionTypeReason:        "ask why",
	models.QuestionTypeClarification: "ask what they mean",
	models.QuestionTypeElaboration:   "ask for more details",
	models.QuestionTypeExample:       "ask for a specific example",
	models.QuestionTypeImpact:        "ask about effects or consequences",
	models.QuestionTypeComparison:    "ask how it compares to something else",
}

// TypeHint is the short paraphrase used to steer the model toward an intent.
func TypeHint(t models.QuestionType) string {
	if hint, ok := typeHints[t]; ok {
		return hint
	}
	return "ask a relevant follow-up"
}

// nonInformativePhrases are canonical answers that carry no substance,
// keyed by lowercase language name.
var nonInformativePhrases = map[string][]string{
	"english":  {"I don't know", "n/a", "maybe", "not sure", "no idea", "nothing", "no comment", "idk", "whatever", "no"},
	"chinese":  {"我不知道", "不知道", "不清楚", "没有", "随便", "也许", "无"},
	"spanish":  {"no sé", "n/a", "tal vez", "no estoy seguro", "nada", "ni idea", "no"},
	"french":   {"je ne sais pas", "n/a", "peut-être", "pas sûr", "rien", "aucune idée", "non"},
	"german":   {"ich weiß nicht", "k.A.", "vielleicht", "nicht sicher", "nichts", "keine Ahnung", "nein"},
	"japanese": {"わかりません", "知らない", "特にない", "たぶん", "なし"},
	"korean":   {"모르겠어요", "몰라요", "글쎄요", "없음", "아마도"},
}

var languageAliases = map[string]string{
	"en": "english", "zh": "chinese", "中文": "chinese", "mandarin": "chinese",
	"es": "spanish", "español": "spanish", "fr": "french", "français": "french",
	"de": "german", "deutsch": "german", "ja": "japanese", "日本語": "japanese",
	"ko": "korean", "한국어": "korean",
}

// NonInformativePhrases returns the phrase list for a language, falling back
// to English for unknown languages.
func NonInformativePhrases(language string) []string {
	key := strings.ToLower(strings.TrimSpace(language))
	if alias, ok := languageAliases[key]; ok {
		key = alias
	}
	if phrases, ok := nonInformativePhrases[key]; ok {
		return phrases
	}
	return nonInformativePhrases["english"]
}
