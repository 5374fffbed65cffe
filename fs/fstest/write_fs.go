package fstest

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/luis1ribeiro/SROS2-Utilities/fs"
)

// TestWriteFS tests WriteFile and MkdirAll. Each subtest gets a fresh
// filesystem.
func TestWriteFS(t *testing.T, newFS NewFunc) {
	t.Run("WriteFile", func(t *testing.T) {
		filesystem, root := newFS()
		file := filepath.Join(root, "model.als")
		writeAndRead(t, filesystem, file, []byte("open util/sequniv\n"))
	})

	t.Run("Overwrite", func(t *testing.T) {
		filesystem, root := newFS()
		file := filepath.Join(root, "model.als")
		writeAndRead(t, filesystem, file, []byte("first version, longer"))
		writeAndRead(t, filesystem, file, []byte("second"))
	})

	t.Run("WriteCreatesParents", func(t *testing.T) {
		filesystem, root := newFS()
		file := filepath.Join(root, "out", "reports", "connections.json")
		writeAndRead(t, filesystem, file, []byte("[]"))
	})

	t.Run("MkdirAll", func(t *testing.T) {
		filesystem, root := newFS()
		dir := filepath.Join(root, "a", "b", "c")
		if err := filesystem.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll(%q): got error %v, want nil", dir, err)
		}
		assertExists(t, filesystem.Exists, filepath.Join(root, "a", "b"), true)
		assertExists(t, filesystem.Exists, dir, true)

		if err := filesystem.MkdirAll(dir, 0o755); err != nil {
			t.Errorf("MkdirAll(%q) on existing dir: got error %v, want nil", dir, err)
		}
	})
}

func writeAndRead(t *testing.T, filesystem fs.Filesystem, path string, data []byte) {
	t.Helper()
	if err := filesystem.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile(%q): got error %v, want nil", path, err)
	}
	got, err := filesystem.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%q): got error %v, want nil", path, err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadFile(%q): got %q, want %q", path, got, data)
	}
}
