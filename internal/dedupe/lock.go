package dedupe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ErrLocked is returned when another merge holds the table lock.
var ErrLocked = errors.New("tables are locked by another merge")

// Lock is an exclusive lock file next to the unique table.
type Lock struct {
	path string
}

// LockPath returns the lock file path for a unique table.
func LockPath(uniquePath string) string {
	return uniquePath + ".lock"
}

// AcquireLock creates the lock file exclusively. If the file already exists
// the tables are in use and ErrLocked is returned. The table directory is
// created if needed.
func AcquireLock(uniquePath string) (*Lock, error) {
	path := LockPath(uniquePath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("creating lock file: %w", err)
	}
	// The pid helps whoever has to remove a stale lock by hand
	_, werr := f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing lock file: %w", err)
	}
	return &Lock{path: path}, nil
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing lock file: %w", err)
	}
	return nil
}
