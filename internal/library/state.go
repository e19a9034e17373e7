package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shelfsync/shelfsync/internal/utils"
)

// Role selects which side's state record a key refers to. The two roles
// are independent state spaces over the same backup directory; comparing
// them across machines is what drives sync decisions.
type Role string

const (
	// RoleProducer tracks the fingerprint of the library as last archived.
	RoleProducer Role = "producer"
	// RoleConsumer tracks the fingerprint of the library as last restored.
	RoleConsumer Role = "consumer"
)

// StateStore persists one fingerprint per (prefix, role) as a plain text
// file in the backup directory. The file names are a cross-machine
// contract shared with whatever syncs the backup directory; do not change
// them without migrating existing deployments.
type StateStore struct {
	dir string
}

func NewStateStore(dir string) *StateStore {
	return &StateStore{dir: dir}
}

// FilePath returns the state file path for a (prefix, role) key.
func (s *StateStore) FilePath(prefix string, role Role) string {
	switch role {
	case RoleConsumer:
		return filepath.Join(s.dir, prefix+"_library_last_restored_state.txt")
	default:
		return filepath.Join(s.dir, prefix+"_library_state.txt")
	}
}

// Read returns the stored fingerprint, or "" if the key was never written
// or the file is empty. Absence is not an error.
func (s *StateStore) Read(prefix string, role Role) (string, error) {
	data, err := os.ReadFile(s.FilePath(prefix, role))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read state %s/%s: %w", prefix, role, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Write replaces the stored fingerprint, creating the backup directory if
// needed. The write goes through a temp file and rename so a crash never
// leaves a truncated state file behind.
func (s *StateStore) Write(prefix string, role Role, digest string) error {
	if err := utils.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("write state %s/%s: %w", prefix, role, err)
	}

	target := s.FilePath(prefix, role)
	tmp, err := os.CreateTemp(s.dir, "."+prefix+"-state-*")
	if err != nil {
		return fmt.Errorf("write state %s/%s: %w", prefix, role, err)
	}

	if _, err := tmp.WriteString(digest); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write state %s/%s: %w", prefix, role, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write state %s/%s: %w", prefix, role, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write state %s/%s: %w", prefix, role, err)
	}
	return nil
}
