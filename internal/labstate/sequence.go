// Package labstate reconstructs discrete lab results from the stream
// of OBR/OBX segments a warehouse message carries, mirroring the way a
// single HL7 report interleaves several distinct tests under one
// observation request.
package labstate

import (
	"strconv"
	"strings"
)

// Sequence parses the OBX-4.1 sub-ID field, which arrives as empty,
// a bare integer ("2"), or a whole.fractional pair ("1.2"). It answers
// whether a following Sequence looks like a continuation of the same
// lab result.
type Sequence struct {
	set   bool
	whole int
	frac  int
	hasFrac bool
}

// NewSequence parses raw, tolerating nil/empty input.
func NewSequence(raw string) Sequence {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Sequence{}
	}
	if dot := strings.IndexByte(raw, '.'); dot > 0 {
		whole, err := strconv.Atoi(raw[:dot])
		if err != nil {
			return Sequence{}
		}
		frac, err := strconv.Atoi(raw[dot+1:])
		if err != nil {
			return Sequence{}
		}
		return Sequence{set: true, whole: whole, frac: frac, hasFrac: true}
	}
	whole, err := strconv.Atoi(raw)
	if err != nil {
		return Sequence{}
	}
	return Sequence{set: true, whole: whole}
}

// InSequenceWith reports whether other looks like it continues the
// same lab result as s. Two cases count as in-sequence:
//
//   - same whole part, other's fractional part greater than s's
//     (1.1 -> 1.2)
//   - other's whole part greater than s's, equal non-zero fractional
//     parts (1.1 -> 2.1)
func (s Sequence) InSequenceWith(other Sequence) bool {
	if !s.set || !other.set {
		return false
	}
	sFrac := s.hasFrac && s.frac != 0
	oFrac := other.hasFrac && other.frac != 0
	if s.whole == other.whole && sFrac && oFrac && s.frac < other.frac {
		return true
	}
	if s.whole < other.whole && sFrac && oFrac && s.frac == other.frac {
		return true
	}
	return false
}
