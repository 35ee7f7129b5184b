package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/rainfall-xml-service/internal/lifecycle"
	"github.com/kjstillabower/rainfall-xml-service/internal/observability"
	"github.com/kjstillabower/rainfall-xml-service/internal/render"
	"github.com/kjstillabower/rainfall-xml-service/internal/service"
	"github.com/kjstillabower/rainfall-xml-service/internal/traffic"
	"github.com/kjstillabower/rainfall-xml-service/internal/validation"
)

const (
	contentTypeText = "text/plain; charset=utf-8"

	msgBadRequest    = "Bad request: min_rainfall must be a number"
	msgInternalError = "Internal server error"
)

// HealthConfig holds thresholds for the health handler.
type HealthConfig struct {
	// InputPath is checked with os.Stat on every health request.
	InputPath        string
	DegradedWindow   time.Duration
	DegradedErrorPct int
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	feed             *service.FeedService
	healthConfig     *HealthConfig
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler. healthConfig may be nil, in which case /health
// reports only lifecycle state.
func NewHandler(feed *service.FeedService, healthConfig *HealthConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		feed:         feed,
		healthConfig: healthConfig,
		logger:       logger,
	}
}

// GetWeatherData serves the XML feed. Method and path are ignored; only the query
// string is read. Every call reads the input file again.
func (h *Handler) GetWeatherData(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)

	values := validation.ParseRawQuery(r.URL.RawQuery)
	q, err := validation.ParseQuery(values)
	if err != nil {
		logger.Debug("bad request", zap.Error(err), zap.String("min_rainfall", values.Get(validation.ParamMinRainfall)))
		writeText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	records, err := h.feed.Records(r.Context(), q)
	if err != nil {
		traffic.RecordError()
		logger.Error("build feed", zap.Error(err))
		writeText(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	body, err := render.XML(records)
	if err != nil {
		traffic.RecordError()
		logger.Error("render feed", zap.Error(err))
		writeText(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	traffic.RecordSuccess()
	w.Header().Set("Content-Type", render.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health on the admin listener.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result, inputOK := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason),
			zap.String("correlation_id", observability.CorrelationID(r.Context())))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := map[string]string{}
	if h.healthConfig != nil {
		if inputOK {
			checks["input"] = "healthy"
		} else {
			checks["input"] = "unhealthy"
		}
	}
	resp := map[string]interface{}{
		"status":    result.status,
		"service":   "rainfall-xml-service",
		"version":   "dev",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// computeHealthStatus evaluates conditions in priority order:
// starting > shutting-down > input missing > error-rate breach > healthy.
// The second return reports whether the input file is currently present.
func (h *Handler) computeHealthStatus() (healthResult, bool) {
	if lifecycle.CurrentPhase() == lifecycle.Starting {
		return healthResult{"starting", http.StatusServiceUnavailable, "starting"}, true
	}
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}, true
	}
	if h.healthConfig == nil {
		return healthResult{"healthy", http.StatusOK, ""}, true
	}
	if _, err := os.Stat(h.healthConfig.InputPath); err != nil {
		reason := "input_unreadable"
		if errors.Is(err, os.ErrNotExist) {
			reason = "input_missing"
		}
		return healthResult{"degraded", http.StatusServiceUnavailable, reason}, false
	}
	if h.healthConfig.DegradedWindow > 0 && h.healthConfig.DegradedErrorPct > 0 {
		errs, total := traffic.ErrorRate(h.healthConfig.DegradedWindow)
		if total > 0 && float64(errs)*100/float64(total) >= float64(h.healthConfig.DegradedErrorPct) {
			return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach"}, true
		}
	}
	return healthResult{"healthy", http.StatusOK, ""}, true
}

func (h *Handler) requestLogger(r *http.Request) *zap.Logger {
	if l, ok := observability.ContextLogger(r.Context()); ok {
		return l
	}
	return h.logger
}

// writeText writes a plain-text response with the given status.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
