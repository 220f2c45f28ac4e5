package fsstore

import (
	"os"
	"path/filepath"
)

// Exists reports whether path exists (file or directory).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MkdirAll creates dir and any missing parents.
func MkdirAll(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// SafeRename moves oldPath to newPath only when oldPath exists and newPath
// does not. It reports whether the move happened; a collision or a missing
// source is a no-op, not an error.
func SafeRename(oldPath, newPath string) (bool, error) {
	if !Exists(oldPath) || Exists(newPath) {
		return false, nil
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return false, err
	}
	return true, nil
}

// RelinkLatest points dir/linkName at target (a path relative to dir). The
// link is created under a temporary name and moved into place so readers
// never observe a missing link. Hosts without symlink support make this a
// no-op; the error is returned for logging but is expected to be ignored.
func RelinkLatest(dir, target, linkName string) error {
	link := filepath.Join(dir, linkName)
	tmp := link + ".0"
	_ = os.Remove(tmp)
	if err := os.Symlink(target, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, link); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
