package mart

import (
	"context"
	"time"
)

// Store is the read-write interface the engine uses against the mart
// database.
type Store interface {
	// LoadVisits returns every existing visit row for visit_id, one
	// per patient_class.
	LoadVisits(ctx context.Context, visitID string) ([]Visit, error)

	// InsertVisit persists a newly constructed visit and assigns its
	// PK.
	InsertVisit(ctx context.Context, v *Visit) error

	// CommitVisit updates an already-persisted visit row in place,
	// bumping LastUpdated.
	CommitVisit(ctx context.Context, v *Visit) error

	// ExistingDiagnoses returns the diagnosis associations already
	// bound to the given visit.
	ExistingDiagnoses(ctx context.Context, visitPK int64) ([]VisitDx, error)

	// InsertDiagnoses inserts new visit/diagnosis associations.
	InsertDiagnoses(ctx context.Context, rows []VisitDx) error

	// ExistingLabs returns the lab associations already bound to the
	// given visit.
	ExistingLabs(ctx context.Context, visitPK int64) ([]VisitLab, error)

	// InsertLabs inserts new visit/lab associations.
	InsertLabs(ctx context.Context, rows []VisitLab) error

	// MaxProcessedMSHID returns the largest msh_id recorded in
	// message_processed, or 0 if the table is empty.
	MaxProcessedMSHID(ctx context.Context) (int64, error)

	// InsertMessageProcessedBatch seeds message_processed rows for
	// newly discovered warehouse messages.
	InsertMessageProcessedBatch(ctx context.Context, rows []MessageProcessed) error

	// DistinctUnprocessedVisitIDs returns every visit_id with at least
	// one unprocessed message.
	DistinctUnprocessedVisitIDs(ctx context.Context) ([]string, error)

	// UnprocessedVisitIDsIn restricts the unprocessed set to the given
	// candidate visit_ids (used for single-day runs).
	UnprocessedVisitIDsIn(ctx context.Context, candidates []string) ([]string, error)

	// UnprocessedMessageIDs returns the msh_ids still unprocessed for
	// visitID.
	UnprocessedMessageIDs(ctx context.Context, visitID string) ([]int64, error)

	// MarkVisitProcessed stamps processed_datetime = now for every
	// unprocessed message row belonging to visitID.
	MarkVisitProcessed(ctx context.Context, visitID string, now time.Time) error

	// ReportableRegions returns the full read-only region/facility
	// association set.
	ReportableRegions(ctx context.Context) ([]ReportableRegion, error)
}
