package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"summary":{}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	touch(t, filepath.Join(dir, "b.json"), base)
	touch(t, filepath.Join(dir, "a.json"), base.Add(time.Hour))
	touch(t, filepath.Join(dir, "notes.txt"), base)
	touch(t, filepath.Join(dir, ".hidden.json"), base)
	touch(t, filepath.Join(dir, ".cache", "x.json"), base)
	touch(t, filepath.Join(dir, "2025", "june.json"), base.Add(2*time.Hour))
	touch(t, filepath.Join(dir, "2025", "deep", "too-deep.json"), base)

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}

	want := []string{
		filepath.Join(dir, "2025", "june.json"),
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.json"),
	}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d: %+v", len(files), len(want), files)
	}
	for i, f := range files {
		if f.Path != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, f.Path, want[i])
		}
	}
	if files[0].Dir != "2025" || files[0].Name != "june" {
		t.Errorf("nested file = %+v, want Dir 2025 Name june", files[0])
	}

	newest, ok := Newest(files)
	if !ok || newest.Name != "june" {
		t.Fatalf("Newest = %+v, want june", newest)
	}
}

func TestScanDir_Missing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("got %d files, want 0", len(files))
	}
	if _, ok := Newest(files); ok {
		t.Fatal("Newest on empty list should report false")
	}
}
