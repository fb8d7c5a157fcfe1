package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InteractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scaffold_interactions_total",
			Help: "Total scaffolding interactions started",
		},
		[]string{"category", "intensity"},
	)

	InteractionsConcluded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scaffold_interactions_concluded_total",
			Help: "Total scaffolding interactions concluded",
		},
	)

	PatternResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scaffold_pattern_responses_total",
			Help: "Total pattern responses issued, by interaction pattern",
		},
		[]string{"pattern"},
	)

	ResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scaffold_responses_total",
			Help: "Total learner responses processed, by classification tag",
		},
		[]string{"tag"},
	)

	ResponseLength = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scaffold_response_length_chars",
			Help:    "Learner response length in characters",
			Buckets: []float64{10, 25, 50, 100, 150, 200, 300, 500},
		},
	)

	FollowUpsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scaffold_follow_ups_total",
			Help: "Total follow-up prompts issued",
		},
	)

	TemplateResetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scaffold_template_resets_total",
			Help: "Total template usage memory resets, by category",
		},
		[]string{"category"},
	)

	IntensityFades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scaffold_intensity_fades_total",
			Help: "Total intensity adjustments, by direction",
		},
		[]string{"direction"},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scaffold_llm_requests_total",
			Help: "Total LLM generation requests, by outcome",
		},
		[]string{"status"},
	)

	LLMFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scaffold_llm_fallbacks_total",
			Help: "Total switches to the fallback LLM model",
		},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scaffold_sessions_active",
			Help: "Currently active scaffolding sessions",
		},
	)
)

func Init() {
	prometheus.MustRegister(InteractionsTotal)
	prometheus.MustRegister(InteractionsConcluded)
	prometheus.MustRegister(PatternResponsesTotal)
	prometheus.MustRegister(ResponsesTotal)
	prometheus.MustRegister(ResponseLength)
	prometheus.MustRegister(FollowUpsTotal)
	prometheus.MustRegister(TemplateResetsTotal)
	prometheus.MustRegister(IntensityFades)
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMFallbacksTotal)
	prometheus.MustRegister(SessionsActive)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
