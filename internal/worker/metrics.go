package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pbugni/pheme.longitudinal/internal/util/metrics"
)

var (
	visitMergeDurations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "worker_visit_merge_duration_seconds",
		Help:    "the length of time it took to merge one visit's unprocessed messages",
		Buckets: metrics.LatencyBuckets,
	})
	visitsMerged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_visits_merged_total",
		Help: "the number of visits successfully merged",
	})
	visitsCanceled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_visits_canceled_total",
		Help: "the number of visits marked canceled for lacking an admit_datetime",
	})
	visitMergeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_visit_merge_errors_total",
		Help: "the number of visits that errored out of dedupVisit",
	})

	// visitCommitDurations is per patient_class since commitVisit
	// operates on a single surrogate, unlike the visit-level metrics
	// above which span every patient_class sharing a visit_id.
	visitCommitDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_visit_commit_duration_seconds",
		Help:    "the length of time it took to commit one surrogate's visit row",
		Buckets: metrics.LatencyBuckets,
	}, metrics.VisitLabels)
)
