package fsops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CheckWritable checks if a path is writable
func CheckWritable(fs afero.Fs, path string) error {
	testFile := filepath.Join(path, ".write_test")
	f, err := fs.Create(testFile)
	if err != nil {
		return fmt.Errorf("path not writable: %w", err)
	}
	f.Close()
	fs.Remove(testFile)
	return nil
}

// EnsureDir ensures a directory exists with the given permissions
func EnsureDir(fs afero.Fs, path string, perm os.FileMode) error {
	if err := fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	return nil
}

// Exists checks if a path exists
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// IsDir checks if a path is a directory
func IsDir(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// WriteFileAtomic writes data next to path and renames it into place,
// creating the parent directory first. Readers never see a partial file.
func WriteFileAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(fs, dir, 0755); err != nil {
		return err
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := fs.Chmod(tmpName, perm); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// RemoveIfExists deletes path and reports whether it was there
func RemoveIfExists(fs afero.Fs, path string) (bool, error) {
	if !Exists(fs, path) {
		return false, nil
	}
	if err := fs.Remove(path); err != nil {
		return false, fmt.Errorf("remove %s: %w", path, err)
	}
	return true, nil
}
