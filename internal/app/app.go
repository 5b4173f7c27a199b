// Package app wires configuration into the HTTP handler graph.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"survey-intelligence/internal/common/config"
	"survey-intelligence/internal/common/database"
	httpx "survey-intelligence/internal/common/http"
	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/common/observability"
	"survey-intelligence/internal/common/validation"
	"survey-intelligence/internal/followup/analyzer"
	"survey-intelligence/internal/followup/cache"
	"survey-intelligence/internal/followup/completion"
	"survey-intelligence/internal/followup/generator"
	"survey-intelligence/internal/followup/normalize"
	generatefollowup "survey-intelligence/internal/handlers/followup/generate-followup"
	generatereason "survey-intelligence/internal/handlers/followup/generate-reason"
	generateenhancedmultilingual "survey-intelligence/internal/handlers/multilingual/generate-enhanced-multilingual"
	generatemultilingual "survey-intelligence/internal/handlers/multilingual/generate-multilingual"
	"survey-intelligence/internal/handlers/system"
	generatethemeenhanced "survey-intelligence/internal/handlers/theme/generate-theme-enhanced"
	"survey-intelligence/internal/transport/rest"
	"survey-intelligence/pkg/registry"
)

const description = "Generate intelligent follow-up questions for survey responses"

// App owns every long-lived dependency created at process start.
type App struct {
	Handler http.Handler
	Cache   cache.Cache

	cfg        *config.Config
	httpClient *httpx.Client
	redis      *database.RedisClient
	obs        *observability.Observability
	logger     logger.Logger

	stopSweeper context.CancelFunc
	sweeperDone chan struct{}
	closeOnce   sync.Once
}

type Option func(*App)

// WithObservability replaces the OpenTelemetry meter; tests pass a no-op.
func WithObservability(obs *observability.Observability) Option {
	return func(a *App) { a.obs = obs }
}

// New builds the cache backend, completion client, normalizer, generator,
// analyzer, handlers and router. Close releases what it opened.
func New(cfg *config.Config, log logger.Logger, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, logger: log.With(map[string]interface{}{"component": "app"})}
	for _, opt := range opts {
		opt(a)
	}
	if a.obs == nil {
		a.obs = observability.New(cfg.App.Name)
	}

	reg, err := loadRegistry(cfg.Registry)
	if err != nil {
		return nil, err
	}

	if err := a.initCache(); err != nil {
		return nil, err
	}

	a.httpClient = httpx.NewClient(httpx.ClientConfig{
		MaxIdleConns:        cfg.LLM.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.LLM.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.GetDuration(cfg.LLM.IdleConnTimeout),
	})
	completer := completion.NewClient(completion.ConfigFromApp(cfg.LLM), a.httpClient, a.Cache, log)

	synonyms, err := normalize.DefaultSynonyms().Merge(cfg.Normalizer.Synonyms)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("normalizer synonyms: %w", err)
	}
	normalizer := normalize.New(normalize.Options{
		MinLineLength:         cfg.Normalizer.MinLineLength,
		MaxPlainTextQuestions: cfg.Normalizer.MaxPlainTextQuestions,
		Synonyms:              synonyms,
	}, log)

	gen := generator.New(completer, normalizer, log)
	themeAnalyzer := analyzer.New(completer, gen, a.Cache, analyzer.Options{
		Keywords: analyzer.DefaultThemeKeywords().Merge(cfg.Themes.Keywords),
		Fanout:   a.obs,
	}, log)

	validators := make(map[string]*validation.RequestValidator, len(reg.Endpoints))
	for _, ep := range reg.Endpoints {
		v, err := validation.ForEndpoint(reg, ep.Path)
		if err != nil {
			a.Close()
			return nil, err
		}
		validators[ep.Path] = v
	}
	for _, route := range []string{
		generatefollowup.Route,
		generatereason.Route,
		generatemultilingual.Route,
		generateenhancedmultilingual.Route,
		generatethemeenhanced.Route,
	} {
		if validators[route] == nil {
			a.Close()
			return nil, fmt.Errorf("registry has no schema for %s", route)
		}
	}

	sys := system.NewHandler(system.Info{
		Name:        cfg.App.Name,
		Description: description,
		Version:     cfg.App.Version,
	}, reg, a.Cache, log)
	if a.redis != nil {
		sys.AddReadinessCheck("redis", a.redis.Ping)
	}

	a.Handler = rest.NewRouter(&rest.Container{
		Followup:       generatefollowup.NewHandler(generatefollowup.LoadConfig(reg), validators[generatefollowup.Route], gen, log),
		Reason:         generatereason.NewHandler(generatereason.LoadConfig(reg), validators[generatereason.Route], gen, log),
		Multilingual:   generatemultilingual.NewHandler(generatemultilingual.LoadConfig(reg), validators[generatemultilingual.Route], gen, log),
		Enhanced:       generateenhancedmultilingual.NewHandler(generateenhancedmultilingual.LoadConfig(reg), validators[generateenhancedmultilingual.Route], themeAnalyzer, log),
		ThemeEnhanced:  generatethemeenhanced.NewHandler(generatethemeenhanced.LoadConfig(reg), validators[generatethemeenhanced.Route], themeAnalyzer, log),
		System:         sys,
		Observability:  a.obs,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
	})

	a.logger.Info("Application wired", map[string]interface{}{
		"cacheBackend": cfg.Cache.Backend,
		"model":        cfg.LLM.Model,
		"endpoints":    len(reg.Endpoints),
	})
	return a, nil
}

func loadRegistry(cfg config.RegistryConfig) (*registry.EndpointRegistry, error) {
	if cfg.Path == "" {
		return registry.Default()
	}
	reg, err := registry.LoadRegistry(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load registry %s: %w", cfg.Path, err)
	}
	return reg, nil
}

func (a *App) initCache() error {
	ttl := config.GetDuration(a.cfg.Cache.TTL)

	switch a.cfg.Cache.Backend {
	case "redis":
		rc, err := database.NewRedis(a.cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis cache: %w", err)
		}
		a.redis = rc
		a.Cache = cache.NewRedisCache(rc.Client, a.cfg.Cache.KeyPrefix, ttl, a.cfg.Cache.MaxSize, a.logger)
	default:
		mem := cache.NewMemoryCache(ttl, a.cfg.Cache.MaxSize, a.logger)
		a.Cache = mem

		ctx, cancel := context.WithCancel(context.Background())
		a.stopSweeper = cancel
		a.sweeperDone = make(chan struct{})
		go func() {
			defer close(a.sweeperDone)
			mem.Run(ctx, config.GetDuration(a.cfg.Cache.SweepInterval))
		}()
	}
	return nil
}

// Ping checks the Redis backend when one is configured.
func (a *App) Ping(ctx context.Context) error {
	if a.redis == nil {
		return nil
	}
	return a.redis.Ping(ctx)
}

// Close stops the sweeper and releases connections. Safe to call twice.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.stopSweeper != nil {
			a.stopSweeper()
			select {
			case <-a.sweeperDone:
			case <-time.After(time.Second):
			}
		}
		if a.httpClient != nil {
			a.httpClient.CloseIdleConnections()
		}
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				a.logger.Warn("Redis close failed", map[string]interface{}{"error": err.Error()})
			}
		}
		a.obs.Shutdown()
	})
}
