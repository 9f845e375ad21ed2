package quote

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rankDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_rank_duration_seconds",
		Help:    "Time spent ranking candidate stores for a quote request.",
		Buckets: prometheus.DefBuckets,
	})
	cartItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_cart_items_count",
		Help:    "Number of distinct products in a quote request cart.",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})
	candidateStores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_candidate_stores_count",
		Help:    "Stores within radius considered for a quote.",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})
	resultStores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_result_stores_count",
		Help:    "Stores returned in a quote response.",
		Buckets: []float64{0, 1, 2, 3},
	})
)

// MetricsRecorder publishes quote engine metrics.
type MetricsRecorder struct{}

func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

func (m *MetricsRecorder) RecordRankDuration(d time.Duration) {
	rankDuration.Observe(d.Seconds())
}

func (m *MetricsRecorder) RecordCartSize(n int) {
	cartItems.Observe(float64(n))
}

func (m *MetricsRecorder) RecordCandidateCount(n int) {
	candidateStores.Observe(float64(n))
}

func (m *MetricsRecorder) RecordResultCount(n int) {
	resultStores.Observe(float64(n))
}
