// Package metrics holds the shared Prometheus building blocks the
// engine's per-package metric vars are built from, grounded on the
// bucket/label shape internal/staging/stage/metrics.go expects from
// the teacher's own (unretrieved) util/metrics package.
package metrics

// LatencyBuckets span a single select-or-insert round trip
// (sub-millisecond) through a whole-visit commit transaction
// (multi-second), reused by every histogram in the engine so
// dashboards compose across packages.
var LatencyBuckets = []float64{
	.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30,
}

// DimensionLabels parameterizes dimension-scoped metrics by tag (see
// internal/dimension's Tag* constants).
var DimensionLabels = []string{"dimension"}

// VisitLabels parameterizes visit-scoped metrics by patient_class, the
// axis dedup behavior most commonly diverges on.
var VisitLabels = []string{"patient_class"}

// LabStateLabels parameterizes lab-state-machine metrics by the kind
// of transition observed.
var LabStateLabels = []string{"transition"}
