package worker

import (
	"context"
	"time"

	"github.com/pbugni/pheme.longitudinal/internal/mart"
	"github.com/pbugni/pheme.longitudinal/internal/warehouse"
)

// fakeMart is an in-memory mart.Store double sufficient for exercising
// dedupVisit without a database.
type fakeMart struct {
	visits map[string][]mart.Visit // visit_id -> rows

	unprocessedByVisit map[string][]int64

	inserted        []*mart.Visit
	committed       []*mart.Visit
	markedProcessed []string
}

func newFakeMart() *fakeMart {
	return &fakeMart{
		visits:             make(map[string][]mart.Visit),
		unprocessedByVisit: make(map[string][]int64),
	}
}

func (f *fakeMart) LoadVisits(_ context.Context, visitID string) ([]mart.Visit, error) {
	return f.visits[visitID], nil
}

func (f *fakeMart) InsertVisit(_ context.Context, v *mart.Visit) error {
	v.PK = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, v)
	f.visits[v.VisitID] = append(f.visits[v.VisitID], *v)
	return nil
}

func (f *fakeMart) CommitVisit(_ context.Context, v *mart.Visit) error {
	v.LastUpdated = time.Now()
	f.committed = append(f.committed, v)
	return nil
}

func (f *fakeMart) ExistingDiagnoses(context.Context, int64) ([]mart.VisitDx, error) { return nil, nil }
func (f *fakeMart) InsertDiagnoses(context.Context, []mart.VisitDx) error            { return nil }
func (f *fakeMart) ExistingLabs(context.Context, int64) ([]mart.VisitLab, error)     { return nil, nil }
func (f *fakeMart) InsertLabs(context.Context, []mart.VisitLab) error                { return nil }
func (f *fakeMart) MaxProcessedMSHID(context.Context) (int64, error)                 { return 0, nil }
func (f *fakeMart) InsertMessageProcessedBatch(context.Context, []mart.MessageProcessed) error {
	return nil
}
func (f *fakeMart) DistinctUnprocessedVisitIDs(context.Context) ([]string, error) { return nil, nil }
func (f *fakeMart) UnprocessedVisitIDsIn(_ context.Context, candidates []string) ([]string, error) {
	return candidates, nil
}

func (f *fakeMart) UnprocessedMessageIDs(_ context.Context, visitID string) ([]int64, error) {
	return f.unprocessedByVisit[visitID], nil
}

func (f *fakeMart) MarkVisitProcessed(_ context.Context, visitID string, _ time.Time) error {
	f.markedProcessed = append(f.markedProcessed, visitID)
	return nil
}

func (f *fakeMart) ReportableRegions(context.Context) ([]mart.ReportableRegion, error) {
	return nil, nil
}

// fakeWarehouse is an in-memory warehouse.Store double.
type fakeWarehouse struct {
	byID map[int64]warehouse.Message
}

func newFakeWarehouse(messages ...warehouse.Message) *fakeWarehouse {
	w := &fakeWarehouse{byID: make(map[int64]warehouse.Message)}
	for _, m := range messages {
		w.byID[m.MSHID] = m
	}
	return w
}

func (w *fakeWarehouse) MessagesSince(context.Context, int64, func([]warehouse.NewMessage) error) error {
	return nil
}

func (w *fakeWarehouse) VisitIDsAdmittedBetween(context.Context, time.Time, time.Time) ([]string, error) {
	return nil, nil
}

func (w *fakeWarehouse) MessagesByID(_ context.Context, mshIDs []int64) ([]warehouse.Message, error) {
	out := make([]warehouse.Message, 0, len(mshIDs))
	for _, id := range mshIDs {
		if m, ok := w.byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (w *fakeWarehouse) ObservationsByMessage(context.Context, []int64) ([]warehouse.ObservationData, error) {
	return nil, nil
}

func (w *fakeWarehouse) NotesFor(context.Context, []int64, []int64) ([]warehouse.Note, error) {
	return nil, nil
}
