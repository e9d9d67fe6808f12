package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	generateRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hfserve",
			Name:      "generate_requests_total",
			Help:      "Total generate calls by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	generateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hfserve",
			Name:      "generate_duration_seconds",
			Help:      "Duration of engine generate calls in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"backend"},
	)

	guardrailRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hfserve",
			Name:      "guardrail_rejections_total",
			Help:      "Requests rejected by prompt policy, by rule",
		},
		[]string{"rule"},
	)

	responseCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hfserve",
			Name:      "response_cache_hits_total",
			Help:      "Generate calls answered from the response cache",
		},
	)
)

func init() {
	prometheus.MustRegister(generateRequestsTotal, generateDuration, guardrailRejectionsTotal, responseCacheHitsTotal)
}
