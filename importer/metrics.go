package importer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "importer",
		Name:      "uploads_total",
		Help:      "Processed uploads by terminal state.",
	}, []string{"state"})

	uploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "importer",
		Name:      "upload_duration_seconds",
		Help:      "Wall-clock time spent processing one upload.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 3, 10),
	})
)

func observeUpload(state State, elapsed time.Duration) {
	uploadsProcessed.WithLabelValues(state.String()).Inc()
	uploadDuration.Observe(elapsed.Seconds())
}
