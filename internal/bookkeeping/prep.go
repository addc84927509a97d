// Package bookkeeping bridges the append-only warehouse to the mart's
// message_processed table, the manager's "prep" step, grounded on
// longitudinal_manager.py's _prepDeduplicateTables.
package bookkeeping

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pbugni/pheme.longitudinal/internal/mart"
	"github.com/pbugni/pheme.longitudinal/internal/warehouse"
)

// Prep seeds message_processed rows for every warehouse message newer
// than the mart's current high-water mark, leaving processed_datetime
// NULL so the manager's visit enumeration picks them up. Since the
// warehouse's msh_id is a monotonically increasing sequence, this is
// safe to call on every run (and is skipped entirely when --skip-prep
// is set).
func Prep(ctx context.Context, wh warehouse.Store, m mart.Store) error {
	start := time.Now()

	maxID, err := m.MaxProcessedMSHID(ctx)
	if err != nil {
		return errors.Wrap(err, "finding max processed msh_id")
	}
	log.Infof("starting bookkeeping prep above msh_id %d", maxID)

	total := 0
	err = wh.MessagesSince(ctx, maxID, func(batch []warehouse.NewMessage) error {
		rows := make([]mart.MessageProcessed, len(batch))
		for i, nm := range batch {
			rows[i] = mart.MessageProcessed{
				MSHID:           nm.MSHID,
				MessageDatetime: nm.MessageDatetime,
				VisitID:         nm.VisitID,
			}
		}
		if err := m.InsertMessageProcessedBatch(ctx, rows); err != nil {
			return errors.Wrap(err, "inserting message_processed batch")
		}
		total += len(rows)
		log.Debugf("added %d new messages", len(rows))
		return nil
	})
	if err != nil {
		return err
	}

	log.Infof("added %d new rows to message_processed in %s", total, time.Since(start))
	return nil
}
