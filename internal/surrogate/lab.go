package surrogate

import (
	"time"

	"github.com/pbugni/pheme.longitudinal/internal/labstate"
)

// Lab is a deduplicated lab result pending association with a visit.
// Equality is defined on TestCode, TestText, Coding, Result, Units and
// Status; the satellite foreign keys (flag, performing lab, specimen
// source, order number, reference range, note) and the two timestamps
// ride along without affecting identity.
type Lab struct {
	TestCode, TestText, Coding string
	Result                     string
	Units                      string
	Status                     string

	Flag           labstate.Flag
	SpecimenSource string
	PerformingLab  string
	OrderNumber    string
	ReferenceRange string
	Note           *string

	CollectionDatetime, ReportDatetime time.Time
}

// FromResult converts a reconstructed labstate.Result into the
// accumulator form SurrogateVisit works with.
func FromResult(r labstate.Result) Lab {
	return Lab{
		TestCode: r.TestCode, TestText: r.TestText, Coding: r.Coding,
		Result: r.Result, Units: r.Units, Status: r.Status,
		Flag: r.Flag, SpecimenSource: r.SpecimenSource, PerformingLab: r.PerformingLab,
		OrderNumber: r.OrderNumber, ReferenceRange: r.ReferenceRange, Note: r.Note,
		CollectionDatetime: r.CollectionDatetime, ReportDatetime: r.ReportDatetime,
	}
}

// LabKey is the identity Lab values are deduplicated on.
type LabKey struct {
	TestCode, TestText, Coding, Result, Units, Status string
}

// Key returns l's identity.
func (l Lab) Key() LabKey {
	return LabKey{l.TestCode, l.TestText, l.Coding, l.Result, l.Units, l.Status}
}

// LabSet holds labs keyed by identity, first-seen wins.
type LabSet struct {
	byKey map[LabKey]Lab
	order []LabKey
}

// NewLabSet returns an empty set.
func NewLabSet() *LabSet {
	return &LabSet{byKey: make(map[LabKey]Lab)}
}

// Add inserts l unless a lab with the same key is already present.
func (s *LabSet) Add(l Lab) {
	key := l.Key()
	if _, ok := s.byKey[key]; ok {
		return
	}
	s.byKey[key] = l
	s.order = append(s.order, key)
}

// All returns the accumulated labs in insertion order.
func (s *LabSet) All() []Lab {
	out := make([]Lab, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k])
	}
	return out
}

// Len reports how many distinct labs have been added.
func (s *LabSet) Len() int {
	return len(s.order)
}

// New returns the labs in s whose key isn't present in existing.
func (s *LabSet) New(existing []Lab) []Lab {
	seen := make(map[LabKey]struct{}, len(existing))
	for _, e := range existing {
		seen[e.Key()] = struct{}{}
	}
	var out []Lab
	for _, k := range s.order {
		if _, ok := seen[k]; ok {
			continue
		}
		out = append(out, s.byKey[k])
	}
	return out
}
