package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReviewSubmissions counts finished dispatches by outcome (success, failure).
	ReviewSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_review_submissions_total",
			Help: "Total number of resume submissions dispatched by the web frontend",
		},
		[]string{"outcome"},
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_review_dispatch_duration_seconds",
			Help:    "Duration of review API calls made by the web frontend",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 90},
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resume_review_active_sessions",
			Help: "Number of browser sessions held in memory",
		},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_review_api_requests_total",
			Help: "Total number of /review-resume/ requests served by the review API",
		},
		[]string{"status"},
	)

	LLMAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_review_llm_attempts_total",
			Help: "Total number of Gemini generation attempts",
		},
		[]string{"result"},
	)
)
