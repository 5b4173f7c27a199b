// internal/handlers/system/handler.go
package system

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	httpx "survey-intelligence/internal/common/http"
	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/followup/cache"
	"survey-intelligence/internal/models"
	"survey-intelligence/pkg/registry"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck returns nil when a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Handler struct {
	info     Info
	registry *registry.EndpointRegistry
	cache    cache.Cache
	logger   logger.Logger

	mu     sync.RWMutex
	checks map[string]ReadinessCheck
}

func NewHandler(info Info, reg *registry.EndpointRegistry, c cache.Cache, log logger.Logger) *Handler {
	return &Handler{
		info:     info,
		registry: reg,
		cache:    c,
		logger:   log.With(map[string]interface{}{"component": "system"}),
		checks:   make(map[string]ReadinessCheck),
	}
}

func (h *Handler) AddReadinessCheck(name string, check ReadinessCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Root lists the static endpoints and every registered generation endpoint.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	out := RootOutput{
		Info: h.info,
		Endpoints: map[string]string{
			"health":         "/health",
			"ready":          "/ready",
			"question_types": "/question-types",
			"cache_stats":    "/cache/stats",
			"metrics":        "/metrics",
		},
		Usage: map[string]string{
			"health":         "GET /health - Check API status",
			"ready":          "GET /ready - Check dependency readiness",
			"question_types": "GET /question-types - Get available question types",
			"cache_stats":    "GET /cache/stats - Inspect the response cache",
			"metrics":        "GET /metrics - Prometheus metrics",
		},
	}
	for _, ep := range h.registry.Endpoints {
		key := strings.ReplaceAll(strings.TrimPrefix(ep.Path, "/"), "-", "_")
		out.Endpoints[key] = ep.Path
		out.Usage[key] = ep.Method + " " + ep.Path + " - " + ep.Description
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready runs every readiness check and answers 503 if any fails.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	h.mu.RUnlock()
	sort.Strings(names)

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	out := ReadyOutput{Status: "ready", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		h.mu.RLock()
		check := h.checks[name]
		h.mu.RUnlock()

		if err := check(ctx); err != nil {
			h.logger.Warn("Readiness check failed", map[string]interface{}{
				"check": name,
				"error": err.Error(),
			})
			out.Checks[name] = err.Error()
			out.Status = "not ready"
			status = http.StatusServiceUnavailable
			continue
		}
		out.Checks[name] = "ok"
	}
	httpx.WriteJSON(w, status, out)
}

func (h *Handler) QuestionTypes(w http.ResponseWriter, _ *http.Request) {
	out := QuestionTypesOutput{
		QuestionTypes: make([]string, 0, len(models.AllQuestionTypes)),
		Descriptions:  make(map[string]string, len(models.AllQuestionTypes)),
	}
	for _, t := range models.AllQuestionTypes {
		out.QuestionTypes = append(out.QuestionTypes, string(t))
		out.Descriptions[string(t)] = t.Description()
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, statsOutput(h.cache.Stats()))
}

// CachePurge drops expired entries on demand.
func (h *Handler) CachePurge(w http.ResponseWriter, r *http.Request) {
	purged := h.cache.PurgeExpired(r.Context())
	stats := h.cache.Stats()

	h.logger.Info("Cache purged", map[string]interface{}{
		"purged":  purged,
		"entries": stats.Entries,
		"backend": stats.Backend,
	})
	httpx.WriteJSON(w, http.StatusOK, CachePurgeOutput{Purged: purged, Entries: stats.Entries})
}

func statsOutput(s cache.Stats) CacheStatsOutput {
	out := CacheStatsOutput{
		Backend:   s.Backend,
		Entries:   s.Entries,
		MaxSize:   s.MaxSize,
		TTLMillis: s.TTL.Milliseconds(),
		Hits:      s.Hits,
		Misses:    s.Misses,
		Evictions: s.Evictions,
		Expired:   s.Expired,
	}
	if lookups := s.Hits + s.Misses; lookups > 0 {
		out.HitRatio = float64(s.Hits) / float64(lookups)
	}
	return out
}
