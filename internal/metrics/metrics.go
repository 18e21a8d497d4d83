// Package metrics exposes the service's prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts API requests by route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deskd_http_requests_total",
		Help: "HTTP requests served, by route and status code.",
	}, []string{"route", "status"})

	// StorageFallbacks counts reads that fell back to a default value
	// because the key was missing, the backend failed, or the blob was
	// malformed.
	StorageFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deskd_storage_fallbacks_total",
		Help: "Reads resolved to a default value instead of stored data.",
	}, []string{"reason"})

	// WriteErrors counts failed saves surfaced to the caller.
	WriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deskd_storage_write_errors_total",
		Help: "Record saves that failed.",
	})

	// GateEvaluations counts final-gate outcomes by color.
	GateEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deskd_gate_evaluations_total",
		Help: "Final gate evaluations, by resulting signal.",
	}, []string{"signal"})
)

// Fallback reasons.
const (
	FallbackMissing   = "missing"
	FallbackError     = "error"
	FallbackBadRecord = "bad_record"
)

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
