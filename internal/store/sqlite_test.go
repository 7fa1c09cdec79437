package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gramsim/gram/internal/sweep"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	want := fullResults(t)

	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertEqualResults(t, got, want)
}

func TestSQLiteSaveReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, fullResults(t)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	smaller := sweep.Results{
		{Permanent: 1, Removed: 1}: {"normal": {ThresholdError: 0.42}},
	}
	if err := s.Save(ctx, smaller); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Load() returned %d pairs, want 1", len(got))
	}
	if got[sweep.PairKey{Permanent: 1, Removed: 1}]["normal"].ThresholdError != 0.42 {
		t.Error("Load() did not return the replacing result set")
	}
}

func TestSQLiteLoadEmpty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() on empty store returned %d pairs", len(got))
	}
}

func TestSQLiteReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.db")
	ctx := context.Background()
	want := fullResults(t)

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load() after reopen error = %v", err)
	}
	assertEqualResults(t, got, want)
}
