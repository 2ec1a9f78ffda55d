package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestArtifactStoreSaveAndOverwrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewArtifactStore(dir)
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}

	path, err := store.Save("results.csv", []byte("first"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("Save path = %q, want file under %q", path, dir)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(got) != "first" {
		t.Fatalf("artifact = %q, want %q", got, "first")
	}

	// A second save for the same name replaces the content.
	path2, err := store.Save("results.csv", []byte("second"))
	if err != nil {
		t.Fatalf("Save again: %v", err)
	}
	if path2 != path {
		t.Fatalf("second Save path = %q, want %q", path2, path)
	}
	got, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("artifact after overwrite = %q, want %q", got, "second")
	}
}

func TestArtifactStoreCreatesBaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "artifacts")
	if _, err := NewArtifactStore(dir); err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat base dir: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("%q is not a directory", dir)
	}
}

func TestArtifactStoreRequiresBasePath(t *testing.T) {
	if _, err := NewArtifactStore("  "); err == nil {
		t.Fatal("expected error for empty base path")
	}
}

func TestArtifactStoreStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	store, err := NewArtifactStore(dir)
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}
	path, err := store.Save("../escape.csv", []byte("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("Save path = %q, want file under %q", path, dir)
	}
}
