// Package httpapi is the JSON API over the journal: daily records, gate and
// regime evaluation, weekly review, prep log, and the static content
// registry.
package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/libertrade/deskd/internal/config"
	"github.com/libertrade/deskd/internal/gates"
	"github.com/libertrade/deskd/internal/journal"
	"github.com/libertrade/deskd/internal/metrics"
	"github.com/libertrade/deskd/internal/regime"
	"github.com/libertrade/deskd/internal/store"
	"github.com/libertrade/deskd/internal/weekly"
)

// Server wires the journal components behind a gorilla/mux router.
type Server struct {
	kv         store.KV
	repo       *journal.Repository
	eval       *gates.Evaluator
	classifier *regime.Classifier
	agg        *weekly.Aggregator
	plog       *weekly.PrepLog
	hub        *Hub
	log        zerolog.Logger
	limiter    *rate.Limiter
	router     *mux.Router
}

// NewServer builds the API server over kv.
func NewServer(cfg *config.Config, kv store.KV, log zerolog.Logger) *Server {
	repo := journal.NewRepository(kv, log)
	eval := gates.NewEvaluator(cfg.GateConfig())
	s := &Server{
		kv:         kv,
		repo:       repo,
		eval:       eval,
		classifier: regime.NewClassifier(cfg.Regime),
		agg:        weekly.NewAggregator(repo, log),
		plog:       weekly.NewPrepLog(repo, log),
		hub:        NewHub(log),
		log:        log.With().Str("component", "http").Logger(),
		limiter:    rate.NewLimiter(rate.Limit(cfg.Server.RateLimitPerSecond), cfg.Server.RateLimitBurst),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	// Middleware runs after route matching, so the path template is
	// available for the metrics label.
	r.Use(s.logRequests, s.rateLimit)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/checkin/{date}", s.getCheckIn).Methods(http.MethodGet)
	api.HandleFunc("/checkin/{date}", s.putCheckIn).Methods(http.MethodPut)

	api.HandleFunc("/prep/{date}", s.getInstruments).Methods(http.MethodGet)
	api.HandleFunc("/prep/{date}/{instrument}", s.getPrep).Methods(http.MethodGet)
	api.HandleFunc("/prep/{date}/{instrument}", s.putPrep).Methods(http.MethodPut)

	api.HandleFunc("/review/{date}/{instrument}", s.getReview).Methods(http.MethodGet)
	api.HandleFunc("/review/{date}/{instrument}", s.putReview).Methods(http.MethodPut)

	api.HandleFunc("/activations/{date}", s.getActivations).Methods(http.MethodGet)
	api.HandleFunc("/activations/{date}", s.postActivation).Methods(http.MethodPost)

	api.HandleFunc("/dll/{date}", s.getDLLEvents).Methods(http.MethodGet)
	api.HandleFunc("/dll/{date}", s.postDLLEvent).Methods(http.MethodPost)

	api.HandleFunc("/gate/{date}", s.getGate).Methods(http.MethodGet)
	api.HandleFunc("/context/{date}/{instrument}", s.getContext).Methods(http.MethodGet)

	api.HandleFunc("/week/{monday}", s.getWeek).Methods(http.MethodGet)
	api.HandleFunc("/week/{monday}/ack", s.putWeeklyAck).Methods(http.MethodPut)
	api.HandleFunc("/week/{monday}/takeaway", s.putWeeklyTakeaway).Methods(http.MethodPut)
	api.HandleFunc("/week/{monday}/refresher", s.putWeeklyRefresher).Methods(http.MethodPut)

	api.HandleFunc("/preplog", s.getPrepLogIndex).Methods(http.MethodGet)
	api.HandleFunc("/preplog/{date}/{instrument}", s.getPrepLogEntry).Methods(http.MethodGet)
	api.HandleFunc("/prepcontext/{date}/{instrument}", s.getPrepContext).Methods(http.MethodGet)

	api.HandleFunc("/history", s.getHistory).Methods(http.MethodGet)
	api.HandleFunc("/content/{section}", s.getContent).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.getHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/ws/activations", s.hub.Serve).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	return r
}

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack delegates to the underlying ResponseWriter so websocket upgrades
// work through the logging middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
	}
	return hj.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, "not_found", "unknown endpoint")
}
