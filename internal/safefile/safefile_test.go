package safefile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureDir_CreatesNested(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "state", "monitoring")

	created, err := EnsureDir(target, 0o700)
	if err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if created != target {
		t.Fatalf("unexpected created path: got %s want %s", created, target)
	}
	// Idempotent on existing directories.
	if _, err := EnsureDir(target, 0o700); err != nil {
		t.Fatalf("EnsureDir on existing dir failed: %v", err)
	}
}

func TestWriteFileAtomic_OverwritesRegularFile(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "monitoring-baseline.json")
	if err := os.WriteFile(target, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(target, []byte("new"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("content = %q, want %q", got, "new")
	}
}

func TestWriteFileAtomic_RejectsSymlinkTarget(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target.json")
	link := filepath.Join(root, "link.json")
	if err := os.WriteFile(target, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}

	err := WriteFileAtomic(link, []byte("new"), 0o600)
	if err == nil {
		t.Fatal("expected symlink target to be rejected")
	}
	if !strings.Contains(err.Error(), "symlinked file target") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteFileOnce_NeverOverwrites(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "monitoring-week-3.json")

	if err := WriteFileOnce(target, []byte("week3"), 0o600); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	err := WriteFileOnce(target, []byte("clobber"), 0o600)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("second write should fail with ErrExists, got %v", err)
	}
	got, _ := os.ReadFile(target)
	if string(got) != "week3" {
		t.Fatalf("snapshot was overwritten: %q", got)
	}
}
