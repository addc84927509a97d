package warehouse

import (
	"context"
	"time"
)

// NewMessage describes a just-discovered warehouse message, the
// minimal projection bookkeeping needs to seed message_processed rows.
type NewMessage struct {
	MSHID           int64
	MessageDatetime time.Time
	VisitID         string
}

// Store is the read-only interface the engine uses against the
// warehouse database. All methods are safe for concurrent use by
// multiple worker goroutines sharing one pool.
type Store interface {
	// MessagesSince streams NewMessage rows with MSHID > afterID,
	// oldest first, invoking fn in batches of up to the store's
	// internal chunk size (spec: 500 rows per round trip). fn may be
	// called zero or more times; an error from fn aborts the scan.
	MessagesSince(ctx context.Context, afterID int64, fn func([]NewMessage) error) error

	// VisitIDsAdmittedBetween returns the distinct visit_ids whose
	// admit_datetime falls in [start, end).
	VisitIDsAdmittedBetween(ctx context.Context, start, end time.Time) ([]string, error)

	// MessagesByID returns the full messages for the given msh_ids,
	// ordered oldest to newest by message_datetime.
	MessagesByID(ctx context.Context, mshIDs []int64) ([]Message, error)

	// ObservationsByMessage returns the ObservationData (OBR+OBX) rows
	// carried by the given messages, excluding LOINC 43140-3 ("clinical
	// finding present", not lab data).
	ObservationsByMessage(ctx context.Context, mshIDs []int64) ([]ObservationData, error)

	// NotesFor returns NTE rows referencing any of the given obr or obx
	// ids, ordered by (obr_id, obx_id, sequence_number).
	NotesFor(ctx context.Context, obrIDs, obxIDs []int64) ([]Note, error)
}
