package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prediction Prometheus metrics.
var (
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lnaperf",
			Name:      "predictions_total",
			Help:      "Total number of predictions by outcome",
		},
		[]string{"outcome"}, // "ok" or a failure kind
	)

	PredictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lnaperf",
			Name:      "prediction_duration_seconds",
			Help:      "Prediction duration in seconds, feature building and both regressors",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	PredictionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lnaperf",
			Name:      "prediction_cache_total",
			Help:      "Prediction cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ArtifactLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lnaperf",
			Name:      "artifact_load_duration_seconds",
			Help:      "Time to fetch and decode all trained artifacts",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"source", "status"},
	)
)

var registerPrediction sync.Once

// RegisterPredictionMetrics registers the prediction metrics. Safe to call more than once.
func RegisterPredictionMetrics() {
	registerPrediction.Do(func() {
		prometheus.MustRegister(PredictionsTotal)
		prometheus.MustRegister(PredictionDuration)
		prometheus.MustRegister(PredictionCacheTotal)
		prometheus.MustRegister(ArtifactLoadDuration)
	})
}
