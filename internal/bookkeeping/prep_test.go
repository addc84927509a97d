package bookkeeping

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbugni/pheme.longitudinal/internal/mart"
	"github.com/pbugni/pheme.longitudinal/internal/warehouse"
)

type fakeWarehouse struct {
	messages []warehouse.NewMessage
}

func (f *fakeWarehouse) MessagesSince(_ context.Context, afterID int64, fn func([]warehouse.NewMessage) error) error {
	var batch []warehouse.NewMessage
	for _, m := range f.messages {
		if m.MSHID > afterID {
			batch = append(batch, m)
		}
	}
	if len(batch) == 0 {
		return nil
	}
	return fn(batch)
}
func (f *fakeWarehouse) VisitIDsAdmittedBetween(context.Context, time.Time, time.Time) ([]string, error) {
	return nil, nil
}
func (f *fakeWarehouse) MessagesByID(context.Context, []int64) ([]warehouse.Message, error) {
	return nil, nil
}
func (f *fakeWarehouse) ObservationsByMessage(context.Context, []int64) ([]warehouse.ObservationData, error) {
	return nil, nil
}
func (f *fakeWarehouse) NotesFor(context.Context, []int64, []int64) ([]warehouse.Note, error) {
	return nil, nil
}

type fakeMart struct {
	maxID    int64
	inserted []mart.MessageProcessed
}

func (f *fakeMart) LoadVisits(context.Context, string) ([]mart.Visit, error)      { return nil, nil }
func (f *fakeMart) InsertVisit(context.Context, *mart.Visit) error                { return nil }
func (f *fakeMart) CommitVisit(context.Context, *mart.Visit) error                { return nil }
func (f *fakeMart) ExistingDiagnoses(context.Context, int64) ([]mart.VisitDx, error) {
	return nil, nil
}
func (f *fakeMart) InsertDiagnoses(context.Context, []mart.VisitDx) error        { return nil }
func (f *fakeMart) ExistingLabs(context.Context, int64) ([]mart.VisitLab, error) { return nil, nil }
func (f *fakeMart) InsertLabs(context.Context, []mart.VisitLab) error            { return nil }
func (f *fakeMart) MaxProcessedMSHID(context.Context) (int64, error)             { return f.maxID, nil }
func (f *fakeMart) InsertMessageProcessedBatch(_ context.Context, rows []mart.MessageProcessed) error {
	f.inserted = append(f.inserted, rows...)
	return nil
}
func (f *fakeMart) DistinctUnprocessedVisitIDs(context.Context) ([]string, error) { return nil, nil }
func (f *fakeMart) UnprocessedVisitIDsIn(_ context.Context, candidates []string) ([]string, error) {
	return candidates, nil
}
func (f *fakeMart) UnprocessedMessageIDs(context.Context, string) ([]int64, error) { return nil, nil }
func (f *fakeMart) MarkVisitProcessed(context.Context, string, time.Time) error    { return nil }
func (f *fakeMart) ReportableRegions(context.Context) ([]mart.ReportableRegion, error) {
	return nil, nil
}

func TestPrepSeedsOnlyMessagesAboveMaxID(t *testing.T) {
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	wh := &fakeWarehouse{messages: []warehouse.NewMessage{
		{MSHID: 1, MessageDatetime: t0, VisitID: "V1"},
		{MSHID: 2, MessageDatetime: t0, VisitID: "V1"},
		{MSHID: 3, MessageDatetime: t0, VisitID: "V2"},
	}}
	m := &fakeMart{maxID: 1}

	require.NoError(t, Prep(context.Background(), wh, m))

	require.Len(t, m.inserted, 2)
	assert.Equal(t, int64(2), m.inserted[0].MSHID)
	assert.Equal(t, int64(3), m.inserted[1].MSHID)
}

func TestPrepNoNewMessagesIsNoop(t *testing.T) {
	wh := &fakeWarehouse{}
	m := &fakeMart{maxID: 5}
	require.NoError(t, Prep(context.Background(), wh, m))
	assert.Empty(t, m.inserted)
}
