package rest

import (
	"net/http"

	apperrors "survey-intelligence/internal/common/errors"
	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/common/observability"
	generatefollowup "survey-intelligence/internal/handlers/followup/generate-followup"
	generatereason "survey-intelligence/internal/handlers/followup/generate-reason"
	generateenhancedmultilingual "survey-intelligence/internal/handlers/multilingual/generate-enhanced-multilingual"
	generatemultilingual "survey-intelligence/internal/handlers/multilingual/generate-multilingual"
	"survey-intelligence/internal/handlers/system"
	generatethemeenhanced "survey-intelligence/internal/handlers/theme/generate-theme-enhanced"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Container holds all dependencies for the router
type Container struct {
	Followup       *generatefollowup.Handler
	Reason         *generatereason.Handler
	Multilingual   *generatemultilingual.Handler
	Enhanced       *generateenhancedmultilingual.Handler
	ThemeEnhanced  *generatethemeenhanced.Handler
	System         *system.Handler
	Observability  *observability.Observability
	AllowedOrigins []string
	Logger         logger.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()
	log := c.Logger.With(map[string]interface{}{"component": "http"})
	errs := apperrors.NewErrorHandler(log)

	r.Use(instrumentMiddleware(log, c.Observability))

	r.Handle(generatefollowup.Route, c.Followup).Methods(http.MethodPost)
	r.Handle(generatereason.Route, c.Reason).Methods(http.MethodPost)
	r.Handle(generatemultilingual.Route, c.Multilingual).Methods(http.MethodPost)
	r.Handle(generateenhancedmultilingual.Route, c.Enhanced).Methods(http.MethodPost)
	r.Handle(generatethemeenhanced.Route, c.ThemeEnhanced).Methods(http.MethodPost)

	r.HandleFunc("/", c.System.Root).Methods(http.MethodGet)
	r.HandleFunc("/health", c.System.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", c.System.Ready).Methods(http.MethodGet)
	r.HandleFunc("/question-types", c.System.QuestionTypes).Methods(http.MethodGet)
	r.HandleFunc("/cache/stats", c.System.CacheStats).Methods(http.MethodGet)
	r.HandleFunc("/cache/purge", c.System.CachePurge).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		errs.WriteError(w, req, apperrors.NewNotFoundError(req.URL.Path))
	})

	return requestIDMiddleware(corsMiddleware(c.AllowedOrigins)(r))
}
