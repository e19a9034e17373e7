package library

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// Fingerprint summarizes the tree rooted at root into a hex SHA-256 digest
// of every regular file's relative path, size and whole-second mtime.
// Contents are not hashed, so a write that changes neither size nor mtime
// goes undetected; that is the accepted trade-off for speed.
//
// Traversal is lexicographic, so two runs over an unchanged tree yield the
// same digest regardless of OS directory-entry ordering. Files that vanish
// between listing and stat are skipped.
func Fingerprint(root string) (string, error) {
	hasher := sha256.New()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// deleted mid-walk
				return nil
			}
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		fmt.Fprintf(hasher, "%s|%d|%d\n", filepath.ToSlash(rel), info.Size(), info.ModTime().Unix())
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", root, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
