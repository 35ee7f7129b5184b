package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/rainfall-xml-service/internal/observability"
)

// NewFeedRouter returns the main listener's router. A single route matches every
// method and path and serves the XML feed. Paths are not cleaned, so no request is
// redirected.
func NewFeedRouter(h *Handler, logger *zap.Logger, limiter *rate.Limiter, timeout time.Duration) *mux.Router {
	router := mux.NewRouter()
	router.SkipClean(true)
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.Use(RecoveryMiddleware)
	router.Use(RateLimitMiddleware(limiter))
	router.Use(TimeoutMiddleware(timeout))
	router.MatcherFunc(matchAll).HandlerFunc(h.GetWeatherData)
	return router
}

// NewAdminRouter returns the router for the optional admin listener: /health and /metrics.
func NewAdminRouter(h *Handler, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler())
	return router
}

func matchAll(*http.Request, *mux.RouteMatch) bool {
	return true
}
