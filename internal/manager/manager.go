// Package manager implements the deduplication run's top-level
// control flow: single-instance locking, bookkeeping prep, visit
// enumeration, and worker fan-out, grounded on
// longitudinal_manager.py's LongitudinalManager.
package manager

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pbugni/pheme.longitudinal/internal/bookkeeping"
	"github.com/pbugni/pheme.longitudinal/internal/config"
	"github.com/pbugni/pheme.longitudinal/internal/dimension"
	"github.com/pbugni/pheme.longitudinal/internal/mart"
	"github.com/pbugni/pheme.longitudinal/internal/util/datefile"
	"github.com/pbugni/pheme.longitudinal/internal/util/filelock"
	"github.com/pbugni/pheme.longitudinal/internal/warehouse"
	"github.com/pbugni/pheme.longitudinal/internal/worker"
)

// defaultWorkers leaves one core free for the goroutines driving the
// fan-out itself, replacing the source's hardcoded NUM_PROCS = 5 with
// a count that scales with the host.
func defaultWorkers() int {
	if n := runtime.NumCPU() - 1; n > 0 {
		return n
	}
	return 1
}

// Manager owns the pools, locks, and worker fan-out for one
// deduplication run.
type Manager struct {
	Warehouse warehouse.Store
	Mart      mart.Store
	Resolver  *dimension.Resolver
	Lock      *filelock.Lock

	// Workers overrides the fan-out size; zero means defaultWorkers.
	Workers int
}

// Run executes one full deduplication pass: acquire the single-
// instance lock, optionally prep bookkeeping, enumerate visits to
// process, and fan them out across Workers goroutines.
func (m *Manager) Run(ctx context.Context, cfg *config.Config, df *datefile.Datefile) error {
	if under, load := systemUnderLoad(); under {
		log.Warnf("system under load (%.2f) - continue anyhow", load)
	}

	acquired, err := m.Lock.TryAcquire()
	if err != nil {
		return errors.Wrap(err, "acquiring manager lock")
	}
	if !acquired {
		log.Warnf("can't continue, %s is locked", filelock.Name)
		return nil
	}
	defer func() {
		if err := m.Lock.Release(); err != nil {
			log.WithError(err).Warn("releasing manager lock")
		}
	}()

	reportDate, hasDate := df.Date()
	start := time.Now()
	if !cfg.SkipPrep {
		if err := bookkeeping.Prep(ctx, m.Warehouse, m.Mart); err != nil {
			return errors.Wrap(err, "prepping deduplication tables")
		}
	}

	visitIDs, err := m.visitsToProcess(ctx, reportDate, hasDate)
	if err != nil {
		return errors.Wrap(err, "enumerating visits to process")
	}
	log.Infof("found %d visits needing attention", len(visitIDs))

	if len(visitIDs) > 0 {
		m.fanOut(ctx, visitIDs)
	}

	if err := df.BumpDate(); err != nil {
		return errors.Wrap(err, "persisting report date")
	}
	log.Infof("queue is empty - done in %s", time.Since(start))
	return nil
}

func (m *Manager) visitsToProcess(ctx context.Context, reportDate time.Time, hasDate bool) ([]string, error) {
	if !hasDate {
		log.Info("launch deduplication for entire database")
		return m.Mart.DistinctUnprocessedVisitIDs(ctx)
	}

	log.Infof("launch deduplication for %s", reportDate.Format("2006-01-02"))
	candidates, err := m.Warehouse.VisitIDsAdmittedBetween(ctx, reportDate, reportDate.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return m.Mart.UnprocessedVisitIDsIn(ctx, candidates)
}

// fanOut starts m.Workers (or defaultWorkers) goroutines pulling from
// a work queue pre-loaded with every visitID, then blocks until they
// all drain it, the goroutine replacement for the source's
// JoinableQueue of worker processes.
func (m *Manager) fanOut(ctx context.Context, visitIDs []string) {
	n := m.Workers
	if n <= 0 {
		n = defaultWorkers()
	}

	ids := make(chan string, len(visitIDs))
	for _, id := range visitIDs {
		ids <- id
	}
	close(ids)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		w := &worker.Worker{
			Name:      fmt.Sprintf("worker-%d", i),
			Warehouse: m.Warehouse,
			Mart:      m.Mart,
			Resolver:  m.Resolver,
		}
		wg.Add(1)
		go w.Run(ctx, ids, &wg)
	}
	wg.Wait()
}
