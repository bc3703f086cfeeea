//go:build unix

package flock_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averlon/questline/internal/flock"
)

func TestAcquire(t *testing.T) {
	t.Parallel()

	t.Run("acquires and releases", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "questline.lock")

		lock, err := flock.Acquire(path)
		require.NoError(t, err)
		require.NoError(t, lock.Release())

		// Reacquirable after release.
		lock, err = flock.Acquire(path)
		require.NoError(t, err)
		require.NoError(t, lock.Release())
	})

	t.Run("second holder is rejected", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "questline.lock")

		first, err := flock.Acquire(path)
		require.NoError(t, err)
		defer func() { _ = first.Release() }()

		_, err = flock.Acquire(path)
		assert.Error(t, err, "a held lock must reject a second instance")
	})

	t.Run("release is idempotent", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "questline.lock")

		lock, err := flock.Acquire(path)
		require.NoError(t, err)
		require.NoError(t, lock.Release())
		assert.NoError(t, lock.Release())
	})

	t.Run("unwritable path fails", func(t *testing.T) {
		t.Parallel()
		_, err := flock.Acquire(filepath.Join(t.TempDir(), "missing", "questline.lock"))
		assert.Error(t, err)
	})
}

func TestExclusive_RawDescriptor(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "raw.lock")

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	require.NoError(t, flock.Exclusive(f.Fd()))
	require.NoError(t, flock.Unlock(f.Fd()))
}
