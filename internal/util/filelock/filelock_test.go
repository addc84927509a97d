package filelock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquireThenSecondInstanceFails(t *testing.T) {
	dir := t.TempDir()

	first := New(dir)
	ok, err := first.TryAcquire()
	require.NoError(t, err)
	require.True(t, ok)
	defer first.Release()

	second := New(dir)
	ok, err = second.TryAcquire()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReleaseThenReacquire(t *testing.T) {
	dir := t.TempDir()

	first := New(dir)
	ok, err := first.TryAcquire()
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, first.Release())

	second := New(dir)
	ok, err = second.TryAcquire()
	require.NoError(t, err)
	assert.True(t, ok)
	defer second.Release()
}

func TestReleaseWithoutAcquireIsNoop(t *testing.T) {
	l := New(t.TempDir())
	assert.NoError(t, l.Release())
}

func TestDefaultDir(t *testing.T) {
	assert.Equal(t, "/var/run", DefaultDir("/var/run"))
	assert.NotEmpty(t, DefaultDir(""))
}
