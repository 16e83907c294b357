package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PathConflictError means a non-directory entry sits where a directory is needed.
type PathConflictError struct {
	Path string
	Got  string
}

func (e *PathConflictError) Error() string {
	return fmt.Sprintf("path conflict: %q is a %s, want directory", e.Path, e.Got)
}

// IsPathConflict reports whether err is or wraps a *PathConflictError.
func IsPathConflict(err error) bool {
	var e *PathConflictError
	return errors.As(err, &e)
}

// EnsureDir creates dir and any missing parents. An existing directory is not
// an error; MkdirAll tolerates concurrent creators.
func EnsureDir(dir string) error {
	err := os.MkdirAll(dir, 0o755)
	if err == nil {
		return nil
	}
	if conflict := findConflict(dir); conflict != nil {
		return conflict
	}
	return err
}

// findConflict walks up from dir to the deepest existing entry and reports it
// if it is not a directory.
func findConflict(dir string) error {
	for p := filepath.Clean(dir); ; p = filepath.Dir(p) {
		fi, err := os.Stat(p)
		if err == nil {
			if fi.IsDir() {
				return nil
			}
			return &PathConflictError{Path: p, Got: describeMode(fi.Mode())}
		}
		if parent := filepath.Dir(p); parent == p {
			return nil
		}
	}
}

func describeMode(m os.FileMode) string {
	if m.IsRegular() {
		return "regular file"
	}
	return m.Type().String()
}

// CopyFile copies src to dst byte for byte, keeping the permission bits of src.
// Content goes to a temporary sibling first and is renamed into place, so dst is
// either absent or complete.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	dir, name := filepath.Split(dst)
	if dir == "" {
		dir = "."
	}
	if fi, err := os.Lstat(dst); err == nil && fi.IsDir() {
		return &PathConflictError{Path: dst, Got: "directory"}
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, dst)
}
