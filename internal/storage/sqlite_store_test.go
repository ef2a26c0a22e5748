package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func setupSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "lazytask-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	empty, err := store.LoadAll(ctx)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty store, got %+v (%v)", empty, err)
	}

	want := sampleTasks()
	if err := store.SaveAll(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 1 {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Details != "tables and indexes" || got[0].DueDate != "2026-02-20" {
		t.Fatalf("unexpected fields: %+v", got[0])
	}
	if len(got[0].Tags) != 2 || got[0].Tags[0] != "db" || got[0].Tags[1] != "work" {
		t.Fatalf("unexpected tags: %#v", got[0].Tags)
	}
	if got[1].DueDate != "" || len(got[1].Tags) != 0 {
		t.Fatalf("unexpected optional fields: %+v", got[1])
	}
	if !got[1].UpdatedAt.Equal(want[1].UpdatedAt) {
		t.Fatalf("updatedAt mismatch: %v vs %v", got[1].UpdatedAt, want[1].UpdatedAt)
	}

	id, err := store.NextID(ctx)
	if err != nil || id != 4 {
		t.Fatalf("expected next id 4, got %d (%v)", id, err)
	}
}

func TestSQLiteStoreSaveReplacesEverything(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()
	if err := store.SaveAll(ctx, sampleTasks()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.SaveAll(ctx, sampleTasks()[1:]); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only task 1 to remain, got %+v", got)
	}
	saves, err := store.SaveCount(ctx)
	if err != nil || saves != 2 {
		t.Fatalf("expected 2 recorded saves, got %d (%v)", saves, err)
	}
}

func TestSQLiteStoreFailedSaveKeepsPreviousList(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()
	if err := store.SaveAll(ctx, sampleTasks()); err != nil {
		t.Fatalf("save: %v", err)
	}
	dup := sampleTasks()
	dup[1].ID = dup[0].ID
	if err := store.SaveAll(ctx, dup); err == nil {
		t.Fatal("expected duplicate id save to fail")
	}
	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected previous list to survive, got %+v", got)
	}
}
