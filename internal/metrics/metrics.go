package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/mayutangba/loanbook/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Verification flow

	VerificationEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loanbook",
		Name:      "verification_emails_total",
		Help:      "Verification email dispatch attempts, by outcome.",
	}, []string{"outcome"})

	TokenValidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loanbook",
		Name:      "token_validations_total",
		Help:      "Verification token validations, by result.",
	}, []string{"result"})

	// Ledger

	LoansRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "loanbook",
		Name:      "loans_recorded_total",
		Help:      "Total loan records created.",
	})

	LoansDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "loanbook",
		Name:      "loans_deleted_total",
		Help:      "Total loan records deleted by a party.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "loanbook",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loanbook",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		VerificationEmailsTotal,
		TokenValidationsTotal,
		LoansRecordedTotal,
		LoansDeletedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus the liveness/readiness probes on the
// internal port, away from the public API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		if result.Status != "up" {
			writeHealthStatus(w, result, http.StatusServiceUnavailable)
			return
		}
		writeHealth(w, result)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	writeHealthStatus(w, result, http.StatusOK)
}

func writeHealthStatus(w http.ResponseWriter, result health.HealthResult, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(result)
}
