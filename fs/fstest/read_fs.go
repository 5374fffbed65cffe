package fstest

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

// TestReadFS tests ReadFile and Exists on a filesystem holding one
// deployment file.
func TestReadFS(t *testing.T, newFS NewFunc) {
	filesystem, root := newFS()
	content := []byte("version: 1.2.0\n")
	file := filepath.Join(root, "deploy", "app.yaml")

	if err := filesystem.WriteFile(file, content, 0o644); err != nil {
		t.Fatalf("WriteFile(%q): setup failed: %v", file, err)
	}

	t.Run("ReadFile", func(t *testing.T) {
		got, err := filesystem.ReadFile(file)
		if err != nil {
			t.Fatalf("ReadFile(%q): got error %v, want nil", file, err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("ReadFile(%q): got %q, want %q", file, got, content)
		}
	})

	t.Run("ReadFileNotExist", func(t *testing.T) {
		missing := filepath.Join(root, "missing.cue")
		_, err := filesystem.ReadFile(missing)
		if err == nil {
			t.Fatalf("ReadFile(%q): got nil error, want error", missing)
		}
		if !strings.Contains(err.Error(), "missing.cue") {
			t.Errorf("ReadFile(%q): error %q does not name the file", missing, err)
		}
	})

	t.Run("ExistsFile", func(t *testing.T) {
		assertExists(t, filesystem.Exists, file, true)
	})

	t.Run("ExistsDir", func(t *testing.T) {
		assertExists(t, filesystem.Exists, filepath.Join(root, "deploy"), true)
	})

	t.Run("ExistsNotExist", func(t *testing.T) {
		assertExists(t, filesystem.Exists, filepath.Join(root, "missing.cue"), false)
	})
}

func assertExists(t *testing.T, exists func(string) (bool, error), path string, want bool) {
	t.Helper()
	got, err := exists(path)
	if err != nil {
		t.Fatalf("Exists(%q): got error %v, want nil", path, err)
	}
	if got != want {
		t.Errorf("Exists(%q): got %t, want %t", path, got, want)
	}
}
