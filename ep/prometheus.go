package ep

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.MustRegister(
		promBatchesGenerated,
		promPhaseDurationSeconds,
		promGaussianPairs,
		promRunDurationSeconds,
	)
}

var (
	promBatchesGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ep_batches_generated_total",
		Help: "The number of batches of Gaussian pairs generated",
	})

	promPhaseDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ep_phase_duration_seconds",
			Help:    "The time a worker spent in each instrumented phase",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"phase"},
	)

	promGaussianPairs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ep_gaussian_pairs",
		Help: "The number of accepted Gaussian pairs in the last run",
	})

	promRunDurationSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ep_run_duration_seconds",
		Help: "The wall-clock duration of the last run",
	})
)

// recordSpan records a finished worker span.
func recordSpan(batches int, timers bool, t Timing) {
	promBatchesGenerated.Add(float64(batches))
	if timers {
		promPhaseDurationSeconds.WithLabelValues("uniforms").Observe(t.Uniforms.Seconds())
		promPhaseDurationSeconds.WithLabelValues("gaussians").Observe(t.Gaussians.Seconds())
	}
}

// recordRun records the outcome of a finished run.
func recordRun(pairs int64, elapsed time.Duration) {
	promGaussianPairs.Set(float64(pairs))
	promRunDurationSeconds.Set(elapsed.Seconds())
}
