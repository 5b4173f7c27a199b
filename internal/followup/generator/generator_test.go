package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/followup/completion"
	"survey-intelligence/internal/followup/normalize"
	"survey-intelligence/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter returns canned content and records prompts.
type stubCompleter struct {
	content string
	err     error
	prompts []string
	params  []completion.Params
}

func (s *stubCompleter) Complete(_ context.Context, p string, params completion.Params) (*completion.ChatCompletion, error) {
	s.prompts = append(s.prompts, p)
	s.params = append(s.params, params)
	if s.err != nil {
		return nil, s.err
	}
	return &completion.ChatCompletion{Choices: []completion.Choice{{Message: completion.Message{Role: "assistant", Content: s.content}}}}, nil
}

func newTestGenerator(t *testing.T, stub *stubCompleter) *Generator {
	log := logger.NewTestLogger(t)
	return New(stub, normalize.New(normalize.Options{}, log), log)
}

func TestGenerateFollowups_EndToEndScenario(t *testing.T) {
	stub := &stubCompleter{content: `{"followups":[{"type":"reason","text":"Why do you struggle with time management?"}]}`}
	g := newTestGenerator(t, stub)

	set, err := g.GenerateFollowups(context.Background(),
		"What challenges do you face at work?",
		"I struggle with time management.",
		[]models.QuestionType{models.QuestionTypeReason},
	)
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, models.QuestionTypeReason, set[0].Type)
	assert.Equal(t, "Why do you struggle with time management?", set[0].Text)

	require.Len(t, stub.params, 1)
	assert.Equal(t, 500, stub.params[0].MaxTokens)
	assert.NotEmpty(t, stub.params[0].SystemPrompt)
	assert.Contains(t, stub.prompts[0], "Allowed types: reason.")
}

func TestGenerateFollowups_UnconstrainedReturnsSix(t *testing.T) {
	g := newTestGenerator(t, &stubCompleter{content: "1. Why do you think so?"})

	set, err := g.GenerateFollowups(context.Background(), "Q?", "A.", nil)
	require.NoError(t, err)
	assert.Equal(t, models.AllQuestionTypes, set.Types())
	assert.Equal(t, "Why do you think so?", set[0].Text)
}

func TestGenerateFollowups_PropagatesErrors(t *testing.T) {
	t.Run("completion error", func(t *testing.T) {
		upstream := &completion.CompletionError{Kind: completion.KindHTTPStatus, StatusCode: 503}
		g := newTestGenerator(t, &stubCompleter{err: upstream})

		_, err := g.GenerateFollowups(context.Background(), "Q?", "A.", nil)
		assert.ErrorIs(t, err, completion.ErrCompletionStatus)
	})

	t.Run("normalization error", func(t *testing.T) {
		g := newTestGenerator(t, &stubCompleter{content: "   "})

		_, err := g.GenerateFollowups(context.Background(), "Q?", "A.", nil)
		var normErr *normalize.NormalizationError
		assert.True(t, errors.As(err, &normErr))
	})
}

func TestGenerateReason(t *testing.T) {
	g := newTestGenerator(t, &stubCompleter{content: `{"followups":[{"type":"why","text":"Why is that important to you?"}]}`})

	q, err := g.GenerateReason(context.Background(), "Q?", "A.")
	require.NoError(t, err)
	assert.Equal(t, "Why is that important to you?", q)
}

func TestGenerateMultilingual(t *testing.T) {
	stub := &stubCompleter{content: "\"¿Por qué crees que la gestión del tiempo es difícil?\""}
	g := newTestGenerator(t, stub)

	q, err := g.GenerateMultilingual(context.Background(), "¿Qué desafíos enfrentas?", "La gestión del tiempo.", models.QuestionTypeReason, "Spanish")
	require.NoError(t, err)
	assert.Equal(t, "¿Por qué crees que la gestión del tiempo es difícil?", q)
	assert.True(t, strings.Contains(stub.prompts[0], "Spanish"))
	assert.Equal(t, completion.QuestionParams, stub.params[0])

	_, err = newTestGenerator(t, &stubCompleter{content: `""`}).
		GenerateMultilingual(context.Background(), "Q", "A", models.QuestionTypeReason, "English")
	var normErr *normalize.NormalizationError
	assert.True(t, errors.As(err, &normErr))
}

func TestSingleQuestion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", "What do you mean by that?", "What do you mean by that?"},
		{"labelled", "Question: Why did that happen?\n", "Why did that happen?"},
		{"json", `{"followups":[{"type":"reason","text":"Why?"}]}`, "Why?"},
		{"leading blank lines", "\n\n  \"How so?\"", "How so?"},
		{"empty", "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SingleQuestion(tt.content))
		})
	}
}
