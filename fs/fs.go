// Package fs defines the filesystem capabilities used to read deployment
// descriptions and policies and to write generated models and reports.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReadFS reads whole files.
type ReadFS interface {
	ReadFile(path string) ([]byte, error)
	Exists(path string) (bool, error)
}

// WriteFS writes whole files.
type WriteFS interface {
	WriteFile(path string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
}

// Filesystem is a ReadFS and a WriteFS.
type Filesystem interface {
	ReadFS
	WriteFS
}

// GetAbs returns the absolute form of path, relative to the working directory.
func GetAbs(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("fs: abs %q: %w", path, err)
	}
	return abs, nil
}

// Resolve returns path relative to the directory of base, unless path is
// absolute. Policy files referenced from a deployment are resolved this way.
func Resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(base), path)
}
