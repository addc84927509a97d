package labstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextLabStateSameCodeInSequenceStaysActive(t *testing.T) {
	s := &NextLabState{}
	s.TransitionNewOBX("1.1", "2160-0")
	assert.Equal(t, 0, s.Index())
	s.TransitionNewOBX("1.2", "2160-0")
	assert.Equal(t, 0, s.Index())
}

func TestNextLabStateCodeChangeBumps(t *testing.T) {
	s := &NextLabState{}
	s.TransitionNewOBX("1.1", "2160-0")
	s.TransitionNewOBX("1.1", "718-7")
	assert.Equal(t, 1, s.Index())
}

func TestNextLabStateNonContinuationBumps(t *testing.T) {
	s := &NextLabState{}
	s.TransitionNewOBX("1.1", "2160-0")
	s.TransitionNewOBX("1", "2160-0")
	assert.Equal(t, 1, s.Index())
}

func TestNextLabStateNewOBRBumpsOnlyIfActive(t *testing.T) {
	s := &NextLabState{}
	s.TransitionNewOBR()
	assert.Equal(t, 0, s.Index())

	s.TransitionNewOBX("1", "2160-0")
	s.TransitionNewOBR()
	assert.Equal(t, 1, s.Index())
}
