package dimension

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocksForReturnsDistinctMutexes(t *testing.T) {
	locks := NewLocks()
	a := locks.For(TagFacility)
	b := locks.For(TagDiagnosis)
	assert.NotSame(t, a, b)

	again := locks.For(TagFacility)
	assert.Same(t, a, again)
}

func TestLocksForPanicsOnUnknownTag(t *testing.T) {
	locks := NewLocks()
	assert.Panics(t, func() {
		locks.For("not-a-real-tag")
	})
}

func TestLocksForSerializesAccess(t *testing.T) {
	locks := NewLocks()
	lock := locks.For(TagLabResult)
	lock.Lock()

	acquired := make(chan struct{})
	go func() {
		locks.For(TagLabResult).Lock()
		close(acquired)
		locks.For(TagLabResult).Unlock()
	}()

	lock.Unlock()
	<-acquired
}
