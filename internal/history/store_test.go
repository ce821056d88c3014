package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAddAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute)
	records := []Record{
		{RunID: "run-1", TaskID: 1, InputPath: "a.mp4", Outputs: []string{"a.mkv"}, Status: StatusCompleted, StartedAt: started, FinishedAt: time.Now()},
		{RunID: "run-1", TaskID: 2, InputPath: "b.mp4", Status: StatusFailed, Error: "TranscodeFailed: exit 1", StartedAt: started, FinishedAt: time.Now()},
	}
	for _, record := range records {
		if err := store.Add(ctx, record); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d records, want 2", len(recent))
	}
	// Newest first.
	if recent[0].InputPath != "b.mp4" || recent[1].InputPath != "a.mp4" {
		t.Errorf("order = %s, %s", recent[0].InputPath, recent[1].InputPath)
	}
	if recent[0].Status != StatusFailed || recent[0].Error == "" {
		t.Errorf("failed record = %+v", recent[0])
	}
	if len(recent[1].Outputs) != 1 || recent[1].Outputs[0] != "a.mkv" {
		t.Errorf("outputs = %v", recent[1].Outputs)
	}
}

func TestRecentLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		record := Record{RunID: "run", TaskID: uint64(i + 1), InputPath: "x.mp4", Status: StatusCompleted, StartedAt: time.Now(), FinishedAt: time.Now()}
		if err := store.Add(ctx, record); err != nil {
			t.Fatal(err)
		}
	}
	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Errorf("got %d records, want 2", len(recent))
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	record := Record{RunID: "run", TaskID: 1, InputPath: "a.mp4", Status: StatusCompleted, StartedAt: time.Now(), FinishedAt: time.Now()}
	if err := store.Add(context.Background(), record); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	recent, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Errorf("got %d records after reopen, want 1", len(recent))
	}
}
