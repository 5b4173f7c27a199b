// Package prompt builds the deterministic instruction strings sent to the
// chat-completion provider.
package prompt

import (
	"fmt"
	"strings"

	"survey-intelligence/internal/models"
)

// SystemPrompt is sent as the system message for follow-up set generation.
const SystemPrompt = "You are an expert at generating intelligent follow-up questions for survey responses. " +
	"Return your answer as a JSON object with a 'followups' array, where each item has a 'type' and a 'text' field. " +
	"Do not add any commentary outside the JSON object."

// BuildFollowupPrompt asks for one question per requested type, or for all
// six types when allowedTypes is empty.
func BuildFollowupPrompt(question, answer string, allowedTypes []models.QuestionType) string {
	types := models.ResolveTypes(allowedTypes)

	parts := []string{
		fmt.Sprintf("Survey Question: %s", question),
		fmt.Sprintf("User Response: %s", answer),
		"",
	}

	if len(allowedTypes) > 0 {
		parts = append(parts,
			fmt.Sprintf("Allowed types: %s.", joinTypes(types)),
			fmt.Sprintf("Generate exactly %d follow-up question(s), one for each of these types, in this order:", len(types)),
		)
	} else {
		parts = append(parts, "Generate exactly 6 follow-up questions, one for each of these types, in this order:")
	}

	for i, t := range types {
		parts = append(parts, fmt.Sprintf("%d. %s (%s)", i+1, t, TypeHint(t)))
	}

	parts = append(parts,
		"",
		"Each question must be specific to the user's response, open-ended and concise.",
		`Return ONLY a JSON object in this format: {"followups": [{"type": "<type>", "text": "<question>"}]}`,
	)

	return strings.Join(parts, "\n")
}

// BuildMultilingualPrompt asks for a single question of one intent, written
// in the same language as the question and answer.
func BuildMultilingualPrompt(question, answer string, qType models.QuestionType, language string) string {
	parts := []string{
		fmt.Sprintf("The following survey question and response are written in %s.", language),
		fmt.Sprintf("Survey Question: %s", question),
		fmt.Sprintf("User Response: %s", answer),
		"",
		fmt.Sprintf("Generate exactly one %s follow-up question (%s) in %s.", qType, TypeHint(qType), language),
		"The question must be specific to the response, open-ended and concise.",
		"Return only the question text, without quotes, numbering or explanation.",
	}
	return strings.Join(parts, "\n")
}

// BuildInformativenessPrompt asks for a single-character relevance verdict.
func BuildInformativenessPrompt(question, answer, language string) string {
	phrases := NonInformativePhrases(language)
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = fmt.Sprintf("%q", p)
	}

	parts := []string{
		fmt.Sprintf("Decide whether the survey response below is informative. The response language is %s.", language),
		"",
		fmt.Sprintf("Question: %s", question),
		fmt.Sprintf("Response: %s", answer),
		"",
		fmt.Sprintf("Responses such as %s are non-informative.", strings.Join(quoted, ", ")),
		"Judge whether the response says something relevant to the question's topic, not how long it is. A short but relevant answer is informative.",
		"Return '1' for informative or '0' for non-informative. Reply with the single character only.",
	}
	return strings.Join(parts, "\n")
}

// BuildThemeDetectionPrompt asks which supplied theme, if any, the answer
// addresses.
func BuildThemeDetectionPrompt(answer string, themes []models.Theme) string {
	listed := make([]string, len(themes))
	for i, th := range themes {
		listed[i] = fmt.Sprintf("'%s' (importance: %d%%)", th.Name, th.Importance)
	}

	parts := []string{
		fmt.Sprintf("Survey Response: %s", answer),
		"",
		fmt.Sprintf("Themes: %s", strings.Join(listed, ", ")),
		"",
		"Determine which of the themes the response mentions or relates to.",
		"Match themes flexibly: exact words, partial matches, synonyms, or contextual references all count.",
		"Choose the theme with the highest importance if multiple themes are found.",
		`Return ONLY a JSON object like this: {"theme_name": "<theme>", "importance": <number>}`,
		`If no themes are found, return: {"theme_name": "none", "importance": 0}`,
	}
	return strings.Join(parts, "\n")
}

// BuildThemeQuestionPrompt asks for a question of the given intent that
// explores a theme the respondent mentioned.
func BuildThemeQuestionPrompt(question, answer string, qType models.QuestionType, language string, theme models.Theme) string {
	parts := []string{
		fmt.Sprintf("Survey Question: %s", question),
		fmt.Sprintf("User Response: %s", answer),
		fmt.Sprintf("Detected theme: '%s' (importance: %d%%)", theme.Name, theme.Importance),
		"",
		fmt.Sprintf("Generate exactly one %s follow-up question (%s) in %s that digs deeper into the '%s' theme the respondent mentioned.", qType, TypeHint(qType), language, theme.Name),
		"Then briefly explain why this question is useful.",
		"",
		"Use exactly this format:",
		"Question: <the follow-up question>",
		"Explanation: <one sentence>",
	}
	return strings.Join(parts, "\n")
}

// BuildMissingThemePrompt asks for a question of the given intent that
// steers the respondent toward a theme they did not mention.
func BuildMissingThemePrompt(question, answer string, qType models.QuestionType, language string, theme models.Theme) string {
	parts := []string{
		fmt.Sprintf("Survey Question: %s", question),
		fmt.Sprintf("User Response: %s", answer),
		fmt.Sprintf("Unmentioned theme: '%s' (importance: %d%%)", theme.Name, theme.Importance),
		"",
		fmt.Sprintf("The response does not address the '%s' theme. Generate exactly one %s follow-up question (%s) in %s that naturally invites the respondent to talk about it.", theme.Name, qType, TypeHint(qType), language),
		"Then briefly explain why this question is useful.",
		"",
		"Use exactly this format:",
		"Question: <the follow-up question>",
		"Explanation: <one sentence>",
	}
	return strings.Join(parts, "\n")
}

func joinTypes(types []models.QuestionType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
