package surrogate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosisSetDedupsByICD9AndStatus(t *testing.T) {
	s := NewDiagnosisSet()
	now := time.Now()
	s.Add(Diagnosis{ICD9: "486", Description: "Pneumonia", Status: "working", DxDatetime: now})
	s.Add(Diagnosis{ICD9: "486", Description: "Pneumonia NOS", Status: "working", DxDatetime: now.Add(time.Hour)})

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "Pneumonia", s.All()[0].Description)
}

func TestDiagnosisSetKeepsDistinctStatus(t *testing.T) {
	s := NewDiagnosisSet()
	s.Add(Diagnosis{ICD9: "486", Status: "working"})
	s.Add(Diagnosis{ICD9: "486", Status: "final"})
	assert.Equal(t, 2, s.Len())
}

func TestDiagnosisSetNewFiltersExisting(t *testing.T) {
	s := NewDiagnosisSet()
	s.Add(Diagnosis{ICD9: "486", Status: "working"})
	s.Add(Diagnosis{ICD9: "250.00", Status: "working"})

	existing := []Diagnosis{{ICD9: "486", Status: "working"}}
	newOnes := s.New(existing)
	assert.Len(t, newOnes, 1)
	assert.Equal(t, "250.00", newOnes[0].ICD9)
}
