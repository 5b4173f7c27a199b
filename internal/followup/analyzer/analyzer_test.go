package analyzer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/followup/cache"
	"survey-intelligence/internal/followup/completion"
	"survey-intelligence/internal/followup/normalize"
	"survey-intelligence/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

// routingCompleter answers by prompt kind so concurrent calls stay
// deterministic.
type routingCompleter struct {
	mu          sync.Mutex
	verdict     string
	theme       string
	question    string
	verdictErr  error
	themeErr    error
	prompts     []string
	verdictHits atomic.Int32
	themeDelay  time.Duration
}

func (r *routingCompleter) Complete(ctx context.Context, p string, _ completion.Params) (*completion.ChatCompletion, error) {
	r.mu.Lock()
	r.prompts = append(r.prompts, p)
	r.mu.Unlock()

	var content string
	switch {
	case strings.Contains(p, "Return '1' for informative"):
		r.verdictHits.Add(1)
		if r.verdictErr != nil {
			return nil, r.verdictErr
		}
		content = r.verdict
	case strings.Contains(p, `"theme_name"`):
		if r.themeDelay > 0 {
			select {
			case <-time.After(r.themeDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if r.themeErr != nil {
			return nil, r.themeErr
		}
		content = r.theme
	default:
		content = r.question
	}
	return &completion.ChatCompletion{Choices: []completion.Choice{{Message: completion.Message{Content: content}}}}, nil
}

func (r *routingCompleter) lastPrompt() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prompts[len(r.prompts)-1]
}

type stubQuestions struct {
	question string
	calls    atomic.Int32
}

func (s *stubQuestions) GenerateMultilingual(_ context.Context, _, _ string, _ models.QuestionType, _ string) (string, error) {
	s.calls.Add(1)
	return s.question, nil
}

func newTestAnalyzer(t *testing.T, rc *routingCompleter, sq *stubQuestions) *Analyzer {
	log := logger.NewTestLogger(t)
	return New(rc, sq, cache.NewMemoryCache(time.Minute, 100, log), Options{}, log)
}

var workThemes = []models.Theme{
	{Name: "communication", Importance: 40},
	{Name: "leadership", Importance: 90},
	{Name: "technology", Importance: 60},
}

// ==========================
// Informativeness
// ==========================

func TestDetectInformativeness(t *testing.T) {
	ctx := context.Background()

	t.Run("boundary answers", func(t *testing.T) {
		rc := &routingCompleter{verdict: "0"}
		a := newTestAnalyzer(t, rc, &stubQuestions{})

		got, err := a.DetectInformativeness(ctx, "What challenges do you face at work?", "I don't know", "English")
		require.NoError(t, err)
		assert.False(t, got)

		rc.verdict = " 1\n"
		got, err = a.DetectInformativeness(ctx, "What challenges do you face at work?", "I struggle with time management and communication with my team.", "English")
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("verdict is cached", func(t *testing.T) {
		rc := &routingCompleter{verdict: "1"}
		a := newTestAnalyzer(t, rc, &stubQuestions{})

		for i := 0; i < 3; i++ {
			got, err := a.DetectInformativeness(ctx, "Q?", "A detailed answer.", "English")
			require.NoError(t, err)
			assert.True(t, got)
		}
		assert.Equal(t, int32(1), rc.verdictHits.Load())
	})

	t.Run("empty answer skips the model", func(t *testing.T) {
		rc := &routingCompleter{verdict: "1"}
		a := newTestAnalyzer(t, rc, &stubQuestions{})

		got, err := a.DetectInformativeness(ctx, "Q?", "   ", "English")
		require.NoError(t, err)
		assert.False(t, got)
		assert.Equal(t, int32(0), rc.verdictHits.Load())
	})

	t.Run("anything but 1 is non-informative", func(t *testing.T) {
		rc := &routingCompleter{verdict: "1 - informative"}
		a := newTestAnalyzer(t, rc, &stubQuestions{})

		got, err := a.DetectInformativeness(ctx, "Q?", "Answer.", "English")
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("errors propagate", func(t *testing.T) {
		rc := &routingCompleter{verdictErr: &completion.CompletionError{Kind: completion.KindTimeout}}
		a := newTestAnalyzer(t, rc, &stubQuestions{})

		_, err := a.DetectInformativeness(ctx, "Q?", "Answer.", "English")
		assert.ErrorIs(t, err, completion.ErrCompletionTimeout)
	})
}

// ==========================
// Theme detection
// ==========================

func TestDetectTheme(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		answer   string
		content  string
		wantName string
		wantImp  int
		wantNone bool
	}{
		{
			name:     "model json",
			answer:   "My boss never listens.",
			content:  `{"theme_name": "leadership", "importance": 90}`,
			wantName: "leadership",
			wantImp:  90,
		},
		{
			name:     "embedded json with model importance ignored",
			answer:   "My boss never listens.",
			content:  "Result:\n```json\n{\"theme_name\": \"Leadership\", \"importance\": 5}\n```",
			wantName: "leadership",
			wantImp:  90,
		},
		{
			name:     "model says none",
			answer:   "The weather is nice.",
			content:  `{"theme_name": "none", "importance": 0}`,
			wantNone: true,
		},
		{
			name:     "fallback prefers highest importance name",
			answer:   "Communication and leadership are both weak here.",
			content:  "I think it is about leadership or communication",
			wantName: "leadership",
			wantImp:  90,
		},
		{
			name:     "fallback keyword table",
			answer:   "The new software keeps crashing.",
			content:  "garbled",
			wantName: "technology",
			wantImp:  60,
		},
		{
			name:     "unknown theme from model falls back",
			answer:   "Nothing relevant here.",
			content:  `{"theme_name": "salary", "importance": 70}`,
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer(t, &routingCompleter{theme: tt.content}, &stubQuestions{})

			got, err := a.DetectTheme(ctx, tt.answer, workThemes)
			require.NoError(t, err)
			if tt.wantNone {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantImp, got.Importance)
		})
	}
}

func TestDetectTheme_NoThemesNoCall(t *testing.T) {
	rc := &routingCompleter{}
	a := newTestAnalyzer(t, rc, &stubQuestions{})

	got, err := a.DetectTheme(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, rc.prompts)
}

func TestThemeKeywords_MergeAndBoundaries(t *testing.T) {
	kw := DefaultThemeKeywords().Merge(map[string][]string{"Wellbeing": {"Burnout", "休息"}})

	assert.True(t, kw.matches("wellbeing", "i am close to burnout"))
	assert.True(t, kw.matches("WELLBEING", "需要更多休息"))
	assert.False(t, kw.matches("technology", "i am happy"), "app must not match inside happy")
	assert.True(t, kw.matches("collaboration", "we work together"))
	_, ok := DefaultThemeKeywords()["wellbeing"]
	assert.False(t, ok)
}

// ==========================
// Orchestration
// ==========================

func TestGenerateEnhancedMultilingual(t *testing.T) {
	ctx := context.Background()
	req := EnhancedRequest{Question: "Q?", Answer: "A.", Type: models.QuestionTypeReason, Language: "English"}

	sq := &stubQuestions{question: "Why is that?"}
	res, err := newTestAnalyzer(t, &routingCompleter{verdict: "1"}, sq).GenerateEnhancedMultilingual(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.Informative)
	assert.Equal(t, "Why is that?", res.Question)

	sq = &stubQuestions{question: "unused"}
	res, err = newTestAnalyzer(t, &routingCompleter{verdict: "0"}, sq).GenerateEnhancedMultilingual(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.Informative)
	assert.Empty(t, res.Question)
	assert.Equal(t, int32(0), sq.calls.Load())
}

func TestGenerateThemeEnhanced(t *testing.T) {
	ctx := context.Background()
	base := EnhancedRequest{
		Question: "What challenges do you face at work?",
		Answer:   "My manager rarely gives clear direction.",
		Type:     models.QuestionTypeReason,
		Language: "English",
	}

	t.Run("theme disabled delegates to multilingual", func(t *testing.T) {
		rc := &routingCompleter{}
		sq := &stubQuestions{question: "Why is that?"}

		res, err := newTestAnalyzer(t, rc, sq).GenerateThemeEnhanced(ctx, ThemeEnhancedRequest{EnhancedRequest: base})
		require.NoError(t, err)
		assert.True(t, res.Informative)
		assert.Equal(t, "Why is that?", res.Question)
		assert.Nil(t, res.DetectedTheme)
		assert.Empty(t, rc.prompts)
	})

	t.Run("theme enabled without themes", func(t *testing.T) {
		_, err := newTestAnalyzer(t, &routingCompleter{}, &stubQuestions{}).
			GenerateThemeEnhanced(ctx, ThemeEnhancedRequest{EnhancedRequest: base, ThemeEnabled: true})

		var themeErr *ThemeParameterError
		require.True(t, errors.As(err, &themeErr))
		assert.Equal(t, "THEME_PARAMETERS_MISSING", string(themeErr.AsStandardError().Code))
	})

	t.Run("detected theme", func(t *testing.T) {
		rc := &routingCompleter{
			verdict:  "1",
			theme:    `{"theme_name": "leadership", "importance": 90}`,
			question: "Question: Why do you think your manager avoids giving direction?\nExplanation: Probes the leadership theme.",
		}

		res, err := newTestAnalyzer(t, rc, &stubQuestions{}).
			GenerateThemeEnhanced(ctx, ThemeEnhancedRequest{EnhancedRequest: base, ThemeEnabled: true, Themes: workThemes})
		require.NoError(t, err)
		assert.True(t, res.Informative)
		assert.Equal(t, "Why do you think your manager avoids giving direction?", res.Question)
		assert.Equal(t, "Probes the leadership theme.", res.Explanation)
		require.NotNil(t, res.DetectedTheme)
		assert.Equal(t, "leadership", res.DetectedTheme.Name)
		assert.Nil(t, res.HighestImportanceTheme)
		assert.Contains(t, rc.lastPrompt(), "Detected theme: 'leadership'")
	})

	t.Run("no theme probes the most important one", func(t *testing.T) {
		rc := &routingCompleter{
			verdict:  "1",
			theme:    `{"theme_name": "none", "importance": 0}`,
			question: "Question: How does leadership affect your work?",
		}
		req := base
		req.Answer = "The commute is long."

		res, err := newTestAnalyzer(t, rc, &stubQuestions{}).
			GenerateThemeEnhanced(ctx, ThemeEnhancedRequest{EnhancedRequest: req, ThemeEnabled: true, Themes: workThemes})
		require.NoError(t, err)
		assert.Nil(t, res.DetectedTheme)
		require.NotNil(t, res.HighestImportanceTheme)
		assert.Equal(t, models.Theme{Name: "leadership", Importance: 90}, *res.HighestImportanceTheme)
		assert.Equal(t, "How does leadership affect your work?", res.Question)
		assert.Equal(t, "This question explores the 'leadership' theme.", res.Explanation)
		assert.Contains(t, rc.lastPrompt(), "does not address the 'leadership' theme")
	})

	t.Run("non-informative short circuits after join", func(t *testing.T) {
		rc := &routingCompleter{verdict: "0", theme: `{"theme_name": "leadership"}`, themeDelay: 20 * time.Millisecond}

		res, err := newTestAnalyzer(t, rc, &stubQuestions{}).
			GenerateThemeEnhanced(ctx, ThemeEnhancedRequest{EnhancedRequest: base, ThemeEnabled: true, Themes: workThemes})
		require.NoError(t, err)
		assert.False(t, res.Informative)
		assert.Empty(t, res.Question)
		assert.Len(t, rc.prompts, 2, "both classifiers ran, no generation call")
	})

	t.Run("failure in either branch propagates", func(t *testing.T) {
		upstream := &completion.CompletionError{Kind: completion.KindHTTPStatus, StatusCode: 502}
		rc := &routingCompleter{verdict: "1", themeErr: upstream}

		_, err := newTestAnalyzer(t, rc, &stubQuestions{}).
			GenerateThemeEnhanced(ctx, ThemeEnhancedRequest{EnhancedRequest: base, ThemeEnabled: true, Themes: workThemes})
		assert.ErrorIs(t, err, completion.ErrCompletionStatus)
	})

	t.Run("empty generated question is a normalization error", func(t *testing.T) {
		rc := &routingCompleter{verdict: "1", theme: `{"theme_name": "none"}`, question: "Question: \nExplanation: nothing"}

		_, err := newTestAnalyzer(t, rc, &stubQuestions{}).
			GenerateThemeEnhanced(ctx, ThemeEnhancedRequest{EnhancedRequest: base, ThemeEnabled: true, Themes: workThemes})
		var normErr *normalize.NormalizationError
		assert.True(t, errors.As(err, &normErr))
	})
}

func TestParseQuestionExplanation(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		question string
		expl     string
	}{
		{"labelled", "Question: Why?\nExplanation: Because.", "Why?", "Because."},
		{"same line", "Question: \"Why now?\" Explanation: Timing matters.", "Why now?", "Timing matters."},
		{"no labels", "How did that feel?\nMore text", "How did that feel?", ""},
		{"lowercase labels", "question: Why?\nexplanation: ok", "Why?", "ok"},
		{"full-width colon", "Question：为什么？\nExplanation：探索主题。", "为什么？", "探索主题。"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, e := ParseQuestionExplanation(tt.content)
			assert.Equal(t, tt.question, q)
			assert.Equal(t, tt.expl, e)
		})
	}
}
