// Package lock implements a single-writer exclusion lock over .canopy/index.lock,
// with stale-PID reclamation so a crashed holder does not permanently wedge
// the index.
package lock

import (
	"fmt"
	"os"
	"strconv"
	"syscall"
)

// ErrHeld is returned by Acquire when a live process holds the lock.
var ErrHeld = fmt.Errorf("lock: held by a running process")

// Lock is an acquired exclusive lock over a path. The zero value is not
// usable; obtain one via Acquire.
type Lock struct {
	path string
}

// Acquire creates path exclusively, writing the caller's PID in ASCII. If
// the file already exists, its PID is read and checked for liveness via
// syscall.Kill(pid, 0); a dead holder's lock file is removed and the
// acquisition is retried exactly once. A live holder returns ErrHeld.
func Acquire(path string) (*Lock, error) {
	l, err := tryAcquire(path)
	if err == nil {
		return l, nil
	}
	if err != ErrHeld {
		return nil, err
	}

	reclaimed, reclaimErr := reclaimStale(path)
	if reclaimErr != nil {
		return nil, reclaimErr
	}
	if !reclaimed {
		return nil, ErrHeld
	}

	return tryAcquire(path)
}

func tryAcquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if os.IsExist(err) {
		return nil, ErrHeld
	}
	if err != nil {
		return nil, fmt.Errorf("lock: create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("lock: write pid to %s: %w", path, err)
	}

	return &Lock{path: path}, nil
}

// reclaimStale reads the existing lock file's PID and removes the file if
// that process is no longer alive. Returns true if the file was removed.
func reclaimStale(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return true, nil // holder released between our attempts
	}
	if err != nil {
		return false, fmt.Errorf("lock: read %s: %w", path, err)
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		// unreadable PID: treat the file as stale garbage, not a live holder
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return false, fmt.Errorf("lock: remove corrupt %s: %w", path, rmErr)
		}
		return true, nil
	}

	if syscall.Kill(pid, 0) == nil {
		return false, nil // holder is alive
	}

	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		return false, fmt.Errorf("lock: remove stale %s: %w", path, rmErr)
	}
	return true, nil
}

// Release removes the lock file. Safe to call on all exit paths, including
// after cancellation.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("lock: release %s: %w", l.path, err)
	}
	return nil
}
