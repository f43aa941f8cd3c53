package pipeline

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestResolve_NewestInDir(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	writeFile(t, filepath.Join(dir, "old.json"), foodPayload, base)
	writeFile(t, filepath.Join(dir, "new.json"), foodPayload, base.Add(time.Hour))

	df, err := Resolve("", dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if df.Name != "new" {
		t.Fatalf("Resolve picked %s, want new", df.Name)
	}
}

func TestResolve_ExplicitFileWins(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	old := filepath.Join(dir, "old.json")
	writeFile(t, old, foodPayload, base)
	writeFile(t, filepath.Join(dir, "new.json"), foodPayload, base.Add(time.Hour))

	df, err := Resolve(old, dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if df.Path != old {
		t.Fatalf("Resolve = %s, want %s", df.Path, old)
	}
}

func TestResolve_EmptyDir(t *testing.T) {
	_, err := Resolve("", t.TempDir())
	if !errors.Is(err, ErrNoPayloadFiles) {
		t.Fatalf("err = %v, want ErrNoPayloadFiles", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stmt-9.json")
	writeFile(t, path, foodPayload, time.Now())

	df, err := Resolve(path, "")
	if err != nil {
		t.Fatal(err)
	}
	d, err := LoadFile(df, Options{})
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if d.StatementID != "stmt-9" {
		t.Errorf("StatementID = %q, want stmt-9", d.StatementID)
	}
	approx(t, "AfterActual", d.Projection.Totals.AfterActual, 8.5)

	writeFile(t, path, `{"summary": `, time.Now())
	df, _ = Resolve(path, "")
	if _, err := LoadFile(df, Options{}); err == nil {
		t.Fatal("LoadFile on truncated JSON: want error")
	}
}
