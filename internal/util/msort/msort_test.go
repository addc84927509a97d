package msort

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueByKeyKeepsFirstOccurrence(t *testing.T) {
	in := []string{"486", "486", "079.99", "486"}
	out := UniqueByKey(in, func(s string) string { return s })
	assert.Equal(t, []string{"486", "079.99"}, out)
}

func TestUniqueByKeyEmptyInput(t *testing.T) {
	out := UniqueByKey([]string(nil), func(s string) string { return s })
	assert.Empty(t, out)
}

func TestUniqueByKeyPanicsOnEmptyKey(t *testing.T) {
	assert.Panics(t, func() {
		UniqueByKey([]string{""}, func(s string) string { return s })
	})
}

type labResult struct {
	Code string
	Rank int
}

func TestUniqueByKeyWithStruct(t *testing.T) {
	in := []labResult{{Code: "GLU", Rank: 1}, {Code: "GLU", Rank: 2}, {Code: "WBC", Rank: 1}}
	out := UniqueByKey(in, func(r labResult) string { return r.Code })
	assert.Equal(t, []labResult{{Code: "GLU", Rank: 1}, {Code: "WBC", Rank: 1}}, out)
}
