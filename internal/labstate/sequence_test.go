package labstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceInSequenceWithFractional(t *testing.T) {
	a := NewSequence("1.1")
	b := NewSequence("1.2")
	assert.True(t, a.InSequenceWith(b))
	assert.False(t, b.InSequenceWith(a))
}

func TestSequenceInSequenceWithWhole(t *testing.T) {
	a := NewSequence("1.1")
	b := NewSequence("2.1")
	assert.True(t, a.InSequenceWith(b))
}

func TestSequenceNotInSequenceWhenWholeDecreases(t *testing.T) {
	a := NewSequence("2.1")
	b := NewSequence("1.1")
	assert.False(t, a.InSequenceWith(b))
}

func TestSequenceEmptyNeverInSequence(t *testing.T) {
	a := NewSequence("")
	b := NewSequence("1.1")
	assert.False(t, a.InSequenceWith(b))
	assert.False(t, b.InSequenceWith(a))
}

func TestSequenceBareIntegerHasNoFraction(t *testing.T) {
	a := NewSequence("1")
	b := NewSequence("2")
	assert.False(t, a.InSequenceWith(b))
}

func TestSequenceZeroFracDoesNotCount(t *testing.T) {
	a := NewSequence("1.0")
	b := NewSequence("2.0")
	assert.False(t, a.InSequenceWith(b))
}
