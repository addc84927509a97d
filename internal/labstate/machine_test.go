package labstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbugni/pheme.longitudinal/internal/warehouse"
)

func TestBuildLabsSingleOBXPerOBR(t *testing.T) {
	now := time.Now()
	obrs := []warehouse.ObservationData{
		{
			OBRID: 1, LoincCode: "2160-0", LoincText: "Creatinine", Coding: "LN",
			Status: "F", ObservationDatetime: now, ReportDatetime: now,
			Obxes: []warehouse.Obx{
				{OBXID: 101, ObservationResult: "1.2", Units: "mg/dL"},
			},
		},
		{
			OBRID: 2, LoincCode: "718-7", LoincText: "Hemoglobin", Coding: "LN",
			Status: "F", ObservationDatetime: now, ReportDatetime: now,
			Obxes: []warehouse.Obx{
				{OBXID: 201, ObservationResult: "13.5", Units: "g/dL"},
			},
		},
	}

	labs := BuildLabs(obrs)
	require.Len(t, labs, 2)
	assert.Equal(t, "2160-0", labs[0].TestCode)
	assert.Equal(t, "1.2", labs[0].Result)
	assert.Equal(t, "718-7", labs[1].TestCode)
}

func TestBuildLabsConcatenatesSequenceContinuation(t *testing.T) {
	obrs := []warehouse.ObservationData{
		{
			OBRID: 1, LoincCode: "30313-1", LoincText: "Differential", Coding: "LN",
			Status: "F",
			Obxes: []warehouse.Obx{
				{OBXID: 1, ObservationResult: "Neut 60%", Sequence: "1.1"},
				{OBXID: 2, ObservationResult: "Lymph 30%", Sequence: "1.2"},
			},
		},
	}

	labs := BuildLabs(obrs)
	require.Len(t, labs, 1)
	assert.Equal(t, "Neut 60% Lymph 30%", labs[0].Result)
	assert.Equal(t, []int64{1, 2}, labs[0].OBXIDs)
}

func TestBuildLabsSplitsOnCodeChangeWithinOBR(t *testing.T) {
	obrs := []warehouse.ObservationData{
		{
			OBRID: 1, Status: "F",
			Obxes: []warehouse.Obx{
				{OBXID: 1, ObservationID: "2160-0", ObservationResult: "1.2"},
				{OBXID: 2, ObservationID: "718-7", ObservationResult: "13.5"},
			},
		},
	}

	labs := BuildLabs(obrs)
	require.Len(t, labs, 2)
	assert.Equal(t, "2160-0", labs[0].TestCode)
	assert.Equal(t, "718-7", labs[1].TestCode)
}

func TestAttachNotesMatchesByOBXThenOBR(t *testing.T) {
	labs := []Result{
		{OBRID: 1, OBXIDs: []int64{10}},
		{OBRID: 2, OBXIDs: []int64{20}},
	}
	obxID := int64(10)
	notes := []warehouse.Note{
		{OBRID: 1, OBXID: &obxID, SequenceNumber: 1, Note: "first"},
		{OBRID: 2, OBXID: nil, SequenceNumber: 1, Note: "second"},
	}

	AttachNotes(labs, notes)
	require.NotNil(t, labs[0].Note)
	assert.Equal(t, "first", *labs[0].Note)
	require.NotNil(t, labs[1].Note)
	assert.Equal(t, "second", *labs[1].Note)
}
