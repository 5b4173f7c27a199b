// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Normalizer NormalizerConfig `mapstructure:"normalizer"`
	Themes     ThemesConfig     `mapstructure:"themes"`
	Registry   RegistryConfig   `mapstructure:"registry"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string   `mapstructure:"address"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// LLMConfig describes the hosted chat-completion provider.
type LLMConfig struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	Timeout             int    `mapstructure:"timeout"` // milliseconds
	MaxRetries          int    `mapstructure:"max_retries"`
	RetryBackoff        int    `mapstructure:"retry_backoff"` // milliseconds
	MaxIdleConns        int    `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int    `mapstructure:"max_idle_conns_per_host"`
	IdleConnTimeout     int    `mapstructure:"idle_conn_timeout"` // milliseconds
}

// CacheConfig selects and sizes the response cache. Backend is "memory" or "redis".
type CacheConfig struct {
	Backend       string `mapstructure:"backend"`
	TTL           int    `mapstructure:"ttl"` // milliseconds
	MaxSize       int    `mapstructure:"max_size"`
	SweepInterval int    `mapstructure:"sweep_interval"` // milliseconds
	KeyPrefix     string `mapstructure:"key_prefix"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// NormalizerConfig tunes the plain-text fallback and extends the
// question-type synonym table (canonical type -> extra labels).
type NormalizerConfig struct {
	MinLineLength         int                 `mapstructure:"min_line_length"`
	MaxPlainTextQuestions int                 `mapstructure:"max_plain_text_questions"`
	Synonyms              map[string][]string `mapstructure:"synonyms"`
}

// ThemesConfig extends the semantic keyword table used when theme
// detection falls back to local matching (theme name -> keywords).
type ThemesConfig struct {
	Keywords map[string][]string `mapstructure:"keywords"`
}

// RegistryConfig points at an endpoint registry file. Empty means the
// embedded registry.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
