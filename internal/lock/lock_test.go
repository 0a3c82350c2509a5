package lock

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	require.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	require.NoError(t, l.Release())
	require.NoFileExists(t, path)
}

func TestAcquireFailsWhileHeldByLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	defer l.Release()

	_, err = Acquire(path)
	require.ErrorIs(t, err, ErrHeld)
}

func TestAcquireReclaimsStalePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.lock")

	// PID 1 is always in use on a real system, but an extremely unlikely
	// PID stands in for a dead process without depending on process
	// control in the test itself.
	deadPID := "999999999"
	require.NoError(t, os.WriteFile(path, []byte(deadPID), 0o644))

	l, err := Acquire(path)
	require.NoError(t, err)
	defer l.Release()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(os.Getpid()), string(data))
}

func TestReleaseOnMissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.lock")
	l, err := Acquire(path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	require.NoError(t, l.Release())
}
