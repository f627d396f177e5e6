package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestAppendAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "history.json")
	shown := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	if err := Append(path, Record{ID: "a", Title: "First", Format: "go", ShownAt: shown}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := Append(path, Record{ID: "b", Title: "Second"}, Record{ID: "c"}); err != nil {
		t.Fatalf("second append: %v", err)
	}

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].ID != "a" || !records[0].ShownAt.Equal(shown) {
		t.Fatalf("unexpected first record %+v", records[0])
	}
	if records[2].ID != "c" {
		t.Fatalf("records out of order: %+v", records)
	}
}

func TestAppendWithoutPathIsNoop(t *testing.T) {
	t.Parallel()
	if err := Append("", Record{ID: "x"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := Load(path)
	if err != nil || len(records) != 0 {
		t.Fatalf("expected no records and no error, got %v, %v", records, err)
	}
}

func TestAppendRejectsCorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Append(path, Record{ID: "x"}); err == nil {
		t.Fatal("expected error for corrupt history file")
	}
}
