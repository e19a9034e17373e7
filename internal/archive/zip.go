package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shelfsync/shelfsync/internal/utils"
)

// Pack writes a deflate-compressed zip of every regular file under root to
// dest. Entry names are slash-separated paths relative to root; empty
// directories are not recorded. The zip is written to a temp file and
// renamed into place so dest is never a half-written archive.
func Pack(root, dest string) error {
	if err := utils.EnsureParent(dest); err != nil {
		return fmt.Errorf("pack %s: %w", root, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".shelfsync-pack-*")
	if err != nil {
		return fmt.Errorf("pack %s: %w", root, err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	zw := zip.NewWriter(tmp)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		hdr.Method = zip.Deflate

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, f)
		f.Close()
		return err
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("pack %s: %w", root, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("pack %s: %w", root, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pack %s: %w", root, err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("pack %s: %w", root, err)
	}
	return nil
}

// Unpack replaces the contents of dest with the entries of the zip at src.
// The archive is first extracted into a staging directory next to dest;
// only when extraction fully succeeds is dest cleared and the staged tree
// moved in. A failed extraction therefore leaves dest untouched.
func Unpack(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("unpack %s: %w", src, err)
	}
	defer r.Close()

	if err := utils.EnsureParent(dest); err != nil {
		return fmt.Errorf("unpack %s: %w", src, err)
	}

	staging, err := os.MkdirTemp(filepath.Dir(dest), ".shelfsync-restore-*")
	if err != nil {
		return fmt.Errorf("unpack %s: %w", src, err)
	}
	defer os.RemoveAll(staging)

	for _, f := range r.File {
		if err := extractEntry(f, staging); err != nil {
			return fmt.Errorf("unpack %s: %w", src, err)
		}
	}

	// Point of no return: swap the staged tree into dest.
	if err := utils.ClearDir(dest); err != nil {
		return fmt.Errorf("unpack %s: %w", src, err)
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("unpack %s: %w", src, err)
	}
	for _, entry := range entries {
		from := filepath.Join(staging, entry.Name())
		to := filepath.Join(dest, entry.Name())
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("unpack %s: %w", src, err)
		}
	}

	return nil
}

func extractEntry(f *zip.File, dst string) error {
	target, err := safeJoin(dst, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("zip open file %q: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode().Perm())
	if err != nil {
		return fmt.Errorf("zip extract file %q: %w", target, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("zip extract file %q: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("zip extract file %q: %w", f.Name, err)
	}

	// Preserve archived mtimes so a restored tree fingerprint-stabilizes.
	mtime := f.Modified
	if !mtime.IsZero() {
		if err := os.Chtimes(target, mtime, mtime); err != nil {
			return fmt.Errorf("zip extract file %q: %w", f.Name, err)
		}
	}
	return nil
}

// safeJoin joins an archive entry name under dst, rejecting entries that
// would escape it (zip-slip).
func safeJoin(dst, name string) (string, error) {
	target := filepath.Join(dst, filepath.FromSlash(name))
	if target != dst && !strings.HasPrefix(target, dst+string(filepath.Separator)) {
		return "", fmt.Errorf("illegal entry path %q", name)
	}
	return target, nil
}
