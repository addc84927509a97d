package dimension

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiagnosisIdentity(t *testing.T) {
	d := NewDiagnosis("486", "Pneumonia", "working")
	assert.Equal(t, TagDiagnosis, d.Tag)
	assert.Equal(t, []string{"icd9"}, d.IdentifyingColumns)
	assert.Equal(t, []any{"486"}, d.IdentifyingValues)
	assert.Equal(t, []any{"486", "Pneumonia", "working"}, d.InsertValues)
}

func TestNewDiagnosisSameICD9DifferentStatusSharesIdentity(t *testing.T) {
	working := NewDiagnosis("486", "Pneumonia", "working")
	final := NewDiagnosis("486", "Pneumonia", "final")
	assert.Equal(t, working.IdentifyingValues, final.IdentifyingValues)
}

func TestNewLabFlagIdentity(t *testing.T) {
	d := NewLabFlag("H", "High", "HL70078")
	assert.Equal(t, TagLabFlag, d.Tag)
	assert.Equal(t, []string{"id", "coding"}, d.IdentifyingColumns)
	assert.Equal(t, []any{"H", "HL70078"}, d.IdentifyingValues)
	assert.Equal(t, []string{"id", "text", "coding"}, d.InsertColumns)
	assert.Equal(t, []any{"H", "High", "HL70078"}, d.InsertValues)
}

func TestNewLabFlagSameCodeDifferentTextSharesIdentity(t *testing.T) {
	high := NewLabFlag("H", "High", "HL70078")
	low := NewLabFlag("H", "Low", "HL70078")
	assert.Equal(t, high.IdentifyingValues, low.IdentifyingValues)
}

func TestNewLabResultTruncatesResult(t *testing.T) {
	long := strings.Repeat("x", MaxResultLen+50)
	d := NewLabResult("2160-0", "Creatinine", "LN", long, "mg/dL", "final")

	require.Len(t, d.IdentifyingValues, 6)
	result, ok := d.IdentifyingValues[3].(string)
	require.True(t, ok)
	assert.Len(t, result, MaxResultLen)
}

func TestNewLabResultShortUnaffected(t *testing.T) {
	d := NewLabResult("2160-0", "Creatinine", "LN", "1.2", "mg/dL", "final")
	assert.Equal(t, "1.2", d.IdentifyingValues[3])
}

func TestNewNoteTruncates(t *testing.T) {
	long := strings.Repeat("n", MaxResultLen+1)
	d := NewNote(long)
	assert.Len(t, d.IdentifyingValues[0].(string), MaxResultLen)
}

func TestNewFacilityIdentifiesByNPI(t *testing.T) {
	d := NewFacility(1234567890, "General Hospital")
	assert.Equal(t, []string{"npi"}, d.IdentifyingColumns)
	assert.Equal(t, []any{int64(1234567890)}, d.IdentifyingValues)
	assert.Equal(t, []string{"npi", "name"}, d.InsertColumns)
}

func TestNewLocationIdentifyingTuple(t *testing.T) {
	d := NewLocation("98101", "USA", "WA", "King")
	assert.Equal(t, []string{"zip", "country", "state", "county"}, d.IdentifyingColumns)
	assert.Equal(t, d.IdentifyingColumns, d.InsertColumns)
}
