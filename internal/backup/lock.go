package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/shelfsync/shelfsync/internal/utils"
)

const lockFileName = ".shelfsync.lock"

var ErrBackupDirLocked = errors.New("backup dir locked by another shelfsync run")

// RunLock guards the backup directory against overlapping producer or
// consumer runs on the same machine. Producer/consumer runs on different
// machines are assumed externally serialized by scheduling.
type RunLock struct {
	fl *flock.Flock
}

// AcquireRunLock takes the lock, creating the backup directory if needed.
// It does not block: a held lock is a refused run, not a queued one.
func AcquireRunLock(backupDir string) (*RunLock, error) {
	if err := utils.EnsureDir(backupDir); err != nil {
		return nil, fmt.Errorf("backup dir %s: %w", backupDir, err)
	}

	fl := flock.New(filepath.Join(backupDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock backup dir: %w", err)
	}
	if !locked {
		return nil, ErrBackupDirLocked
	}

	return &RunLock{fl: fl}, nil
}

func (l *RunLock) Release() error {
	if !l.fl.Locked() {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("unlock backup dir: %w", err)
	}
	return os.Remove(l.fl.Path())
}
