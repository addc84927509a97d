package dimension

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pbugni/pheme.longitudinal/internal/util/metrics"
)

var (
	resolveDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dimension_resolve_duration_seconds",
		Help:    "the length of time it took to select-or-insert a dimension row",
		Buckets: metrics.LatencyBuckets,
	}, metrics.DimensionLabels)
	resolveInserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dimension_resolve_inserts_total",
		Help: "the number of dimension rows newly inserted by select-or-insert",
	}, metrics.DimensionLabels)
	resolveErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dimension_resolve_errors_total",
		Help: "the number of errors encountered resolving a dimension row",
	}, metrics.DimensionLabels)
)
