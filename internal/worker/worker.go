// Package worker implements the visit-level deduplication engine: it
// merges newly landed warehouse messages into the mart's star schema,
// one (visit_id, patient_class) surrogate at a time.
package worker

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pbugni/pheme.longitudinal/internal/dimension"
	"github.com/pbugni/pheme.longitudinal/internal/mart"
	"github.com/pbugni/pheme.longitudinal/internal/warehouse"
)

// Worker merges a stream of visit_ids into mart visit rows. Many
// Workers typically share one Warehouse/Mart pool and one Resolver;
// the select-or-insert races between them stay serialized by the
// Resolver's per-dimension locks, replacing the source's one-process-
// per-worker isolation with goroutines over shared connection pools.
type Worker struct {
	Name      string
	Warehouse warehouse.Store
	Mart      mart.Store
	Resolver  *dimension.Resolver
}

// Run consumes visit_ids from ids until the channel closes, merging
// each in turn. A panic or error while processing one visit_id is
// logged and does not stop the worker or leave wg.Done() uncalled, so
// a single bad visit can never deadlock the manager's wait.
func (w *Worker) Run(ctx context.Context, ids <-chan string, wg *sync.WaitGroup) {
	defer wg.Done()
	for visitID := range ids {
		w.process(ctx, visitID)
	}
	log.Debugf("%s: tearing down", w.Name)
}

func (w *Worker) process(ctx context.Context, visitID string) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("%s: CRITICAL panic merging visit %s: %v", w.Name, visitID, r)
		}
	}()

	start := time.Now()
	outcome, err := w.dedupVisit(ctx, visitID)
	visitMergeDurations.Observe(time.Since(start).Seconds())
	if err != nil {
		visitMergeErrors.Inc()
		log.WithError(err).Errorf("%s: CRITICAL error merging visit %s", w.Name, visitID)
		return
	}
	if outcome == OutcomeCanceled {
		visitsCanceled.Inc()
	} else {
		visitsMerged.Inc()
	}
	log.Debugf("%s: merged %s (%s)", w.Name, visitID, outcome)
}
