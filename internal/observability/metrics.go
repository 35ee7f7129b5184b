package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kjstillabower/rainfall-xml-service/internal/traffic"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or 4xx/5xx spikes.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Dominated by the dataset read and parse.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation on large input files.
	HTTPRequestsInFlight prometheus.Gauge

	// Dataset loads by outcome (success, read_error, parse_error). One per feed request.
	DatasetLoadsTotal *prometheus.CounterVec

	// Time to read and parse the input file. Grows with file size.
	DatasetLoadDuration *prometheus.HistogramVec

	// Records written to XML responses after filtering.
	RecordsServedTotal prometheus.Counter

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter

	trafficGaugesOnce sync.Once
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	DatasetLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datasetLoadsTotal",
			Help: "Total number of input file loads by outcome",
		},
		[]string{"status"},
	)
	DatasetLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datasetLoadDurationSeconds",
			Help:    "Input file read and JSON parse latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"status"},
	)
	RecordsServedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recordsServedTotal",
			Help: "Total number of records rendered into XML responses",
		},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		DatasetLoadsTotal, DatasetLoadDuration,
		RecordsServedTotal,
		RateLimitDeniedTotal,
	)
}

// RegisterTrafficGauges registers sliding-window gauges backed by the traffic tracker.
// Call from main after config load; uses the same window as health evaluation.
func RegisterTrafficGauges(window time.Duration) {
	trafficGaugesOnce.Do(func() {
		registry.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "feedRequestsInWindow",
					Help: "Feed requests (success + error + denied) in sliding window",
				},
				func() float64 { return float64(traffic.RequestCount(window)) },
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "feedErrorsInWindow",
					Help: "Feed requests answered with 500 in sliding window",
				},
				func() float64 {
					errs, _ := traffic.ErrorRate(window)
					return float64(errs)
				},
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "rateLimitRejectsInWindow",
					Help: "429 responses in sliding window",
				},
				func() float64 { return float64(traffic.DenialCount(window)) },
			),
		)
	})
}

// RecordDatasetLoad records one input file load with its outcome and duration.
func RecordDatasetLoad(status string, d time.Duration) {
	DatasetLoadsTotal.WithLabelValues(status).Inc()
	DatasetLoadDuration.WithLabelValues(status).Observe(d.Seconds())
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
