package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/followup/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

func createTestConfig(baseURL string) *Config {
	return &Config{
		BaseURL:      baseURL,
		APIKey:       "sk-test",
		Model:        "deepseek-chat",
		Timeout:      2 * time.Second,
		MaxRetries:   1,
		RetryBackoff: 10 * time.Millisecond,
	}
}

func createCompletionResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":    "chatcmpl-1",
		"model": "deepseek-chat",
		"choices": []map[string]interface{}{
			{"index": 0, "message": map[string]interface{}{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestClient(t *testing.T, server *httptest.Server) (*Client, *clock) {
	clk := &clock{now: time.Now()}
	responseCache := cache.NewMemoryCache(time.Minute, 100, logger.NewNoOpLogger(), cache.WithClock(clk.Now))
	return NewClient(createTestConfig(server.URL), server.Client(), responseCache, logger.NewTestLogger(t)), clk
}

// ==========================
// Success and caching
// ==========================

func TestClient_CompleteSendsChatRequest(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(createCompletionResponse("  hello  "))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server)

	out, err := client.Complete(context.Background(), "the prompt", Params{
		SystemPrompt: "be brief",
		Temperature:  0.7,
		MaxTokens:    500,
		TopP:         1,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Content())

	assert.Equal(t, "deepseek-chat", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "be brief", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "the prompt", captured.Messages[1].Content)
	assert.Equal(t, 500, captured.MaxTokens)
	assert.False(t, captured.Stream)
}

func TestClient_CacheWithinTTL(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(createCompletionResponse("1"))
	}))
	defer server.Close()

	client, clk := newTestClient(t, server)
	ctx := context.Background()

	_, err := client.Complete(ctx, "same prompt", VerdictParams)
	require.NoError(t, err)
	out, err := client.Complete(ctx, "same prompt", VerdictParams)
	require.NoError(t, err)
	assert.Equal(t, "1", out.Content())
	assert.Equal(t, int32(1), calls.Load(), "identical prompt within ttl is served from cache")

	_, err = client.Complete(ctx, "same prompt", ThemeParams)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "different params use a different key")

	clk.Advance(2 * time.Minute)
	_, err = client.Complete(ctx, "same prompt", VerdictParams)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load(), "expired entry triggers a new call")
}

func TestClient_FailuresAreNotCached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server)

	_, err := client.Complete(context.Background(), "p", VerdictParams)
	require.Error(t, err)
	_, err = client.Complete(context.Background(), "p", VerdictParams)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

// ==========================
// Retry and typed errors
// ==========================

func TestClient_RetryPolicy(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		wantCalls  int32
		wantErr    bool
		wantStatus int
	}{
		{name: "503 then success", statuses: []int{503, 200}, wantCalls: 2},
		{name: "429 then success", statuses: []int{429, 200}, wantCalls: 2},
		{name: "500 twice exhausts the single retry", statuses: []int{500, 500, 200}, wantCalls: 2, wantErr: true, wantStatus: 500},
		{name: "429 twice", statuses: []int{429, 429}, wantCalls: 2, wantErr: true, wantStatus: 429},
		{name: "400 is not retried", statuses: []int{400, 200}, wantCalls: 1, wantErr: true, wantStatus: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				status := tt.statuses[n-1]
				if status != http.StatusOK {
					w.WriteHeader(status)
					_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
					return
				}
				_ = json.NewEncoder(w).Encode(createCompletionResponse("ok"))
			}))
			defer server.Close()

			client, _ := newTestClient(t, server)
			out, err := client.Complete(context.Background(), "prompt "+tt.name, QuestionParams)

			assert.Equal(t, tt.wantCalls, calls.Load())
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "ok", out.Content())
				return
			}

			require.Error(t, err)
			var ce *CompletionError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, KindHTTPStatus, ce.Kind)
			assert.Equal(t, tt.wantStatus, ce.StatusCode)
			assert.Contains(t, ce.Message, "nope")
			assert.ErrorIs(t, err, ErrCompletionStatus)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, _ := newTestClient(t, server)
	client.config.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := client.Complete(context.Background(), "slow", QuestionParams)
	require.Error(t, err)

	var ce *CompletionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindTimeout, ce.Kind)
	assert.ErrorIs(t, err, ErrCompletionTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), calls.Load(), "timeouts are not retried")
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, _ := newTestClient(t, server)
	server.Close()

	_, err := client.Complete(context.Background(), "unreachable", QuestionParams)
	require.Error(t, err)

	var ce *CompletionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindNetwork, ce.Kind)
	assert.ErrorIs(t, err, ErrCompletionNetwork)
	assert.Equal(t, "COMPLETION_NETWORK_ERROR", string(ce.AsStandardError().Code))
}

func TestClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway</html>"))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server)
	_, err := client.Complete(context.Background(), "p", QuestionParams)

	var ce *CompletionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindNetwork, ce.Kind)
}

func TestCompletionError_StandardMapping(t *testing.T) {
	assert.Equal(t, "COMPLETION_TIMEOUT", string((&CompletionError{Kind: KindTimeout}).AsStandardError().Code))

	std := (&CompletionError{Kind: KindHTTPStatus, StatusCode: 503, Message: "x"}).AsStandardError()
	assert.Equal(t, "COMPLETION_HTTP_ERROR", string(std.Code))
	assert.Equal(t, 503, std.Metadata["upstream_status"])
}

func TestChatCompletion_ContentEmpty(t *testing.T) {
	var nilCompletion *ChatCompletion
	assert.Equal(t, "", nilCompletion.Content())
	assert.Equal(t, "", (&ChatCompletion{}).Content())
}
