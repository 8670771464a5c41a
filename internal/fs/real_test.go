package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestReal_Exists_ReturnsFalseForNonExistent verifies that Exists() returns
// (false, nil) for files that don't exist - not an error.
func TestReal_Exists_ReturnsFalseForNonExistent(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	dir := t.TempDir()

	exists, err := fs.Exists(filepath.Join(dir, "does-not-exist.vdf"))

	if got, want := err, error(nil); !errors.Is(got, want) {
		t.Fatalf("err=%v, want=%v", got, want)
	}

	if got, want := exists, false; got != want {
		t.Fatalf("exists=%v, want=%v", got, want)
	}
}

func TestReal_Exists_ReturnsTrueForFile(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "localconfig.vdf")

	if err := os.WriteFile(path, []byte("\"UserLocalConfigStore\"\n{\n}\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	exists, err := fs.Exists(path)
	if err != nil {
		t.Fatalf("err=%v, want=nil", err)
	}

	if !exists {
		t.Fatal("exists=false, want=true")
	}
}

// TestReal_WriteFileAtomic_SetsPermOnNewFile verifies that new files get
// the requested mode while existing files keep theirs.
func TestReal_WriteFileAtomic_SetsPermOnNewFile(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "new.vdf")

	if err := fs.WriteFileAtomic(path, []byte("first"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o600); got != want {
		t.Fatalf("perm=%v, want=%v", got, want)
	}

	if err := os.Chmod(path, 0o640); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	if err := fs.WriteFileAtomic(path, []byte("second"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	info, err = os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o640); got != want {
		t.Fatalf("perm after overwrite=%v, want=%v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if got, want := string(data), "second"; got != want {
		t.Fatalf("content=%q, want=%q", got, want)
	}
}

func TestReal_ReplaceFile_MovesSourceOverDestination(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	dir := t.TempDir()
	src := filepath.Join(dir, "localconfig.vdf.backup")
	dst := filepath.Join(dir, "localconfig.vdf")

	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := fs.ReplaceFile(src, dst); err != nil {
		t.Fatalf("ReplaceFile: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if got, want := string(data), "new"; got != want {
		t.Fatalf("content=%q, want=%q", got, want)
	}

	exists, err := fs.Exists(src)
	if err != nil || exists {
		t.Fatalf("source exists=%v err=%v, want consumed", exists, err)
	}
}
