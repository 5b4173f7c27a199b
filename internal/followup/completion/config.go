package completion

import (
	"time"

	"survey-intelligence/internal/common/config"
)

// Config describes the provider endpoint and call policy.
type Config struct {
	BaseURL      string
	APIKey       string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// ConfigFromApp maps the application config onto the client config.
func ConfigFromApp(cfg config.LLMConfig) *Config {
	return &Config{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		Model:        cfg.Model,
		Timeout:      config.GetDuration(cfg.Timeout),
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: config.GetDuration(cfg.RetryBackoff),
	}
}

// Params are the per-task model knobs. They are part of the cache key.
type Params struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	TopP         float64
}

// Task presets.
var (
	FollowupSetParams = Params{Temperature: 0.7, MaxTokens: 500, TopP: 1.0}
	QuestionParams    = Params{Temperature: 0.7, MaxTokens: 150, TopP: 1.0}
	VerdictParams     = Params{Temperature: 0.1, MaxTokens: 5, TopP: 1.0}
	ThemeParams       = Params{Temperature: 0.1, MaxTokens: 60, TopP: 1.0}
)
