package retention

import (
	"context"
	"testing"
	"time"

	"github.com/BeAPI/log-http-requests/internal/logstore"
)

func testStore(t *testing.T) *logstore.Store {
	t.Helper()
	store, err := logstore.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCleanup(t *testing.T) {
	store := testStore(t)
	now := time.Now()

	store.Insert(&logstore.Record{URL: "https://old.example.com", DateAdded: now.Add(-48 * time.Hour)})
	store.Insert(&logstore.Record{URL: "https://recent.example.com", DateAdded: now.Add(-12 * time.Hour)})

	sweeper := New(store, 1, nil)
	if err := sweeper.Cleanup(context.Background()); err != nil {
		t.Fatal(err)
	}

	records, err := store.Select(logstore.SelectOptions{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 surviving record, got %d", len(records))
	}
	if records[0].URL != "https://recent.example.com" {
		t.Errorf("wrong record survived: %q", records[0].URL)
	}

	// A second run with no new records changes nothing.
	if err := sweeper.Cleanup(context.Background()); err != nil {
		t.Fatal(err)
	}
	n, _ := store.Count()
	if n != 1 {
		t.Errorf("second cleanup must be a no-op, got %d records", n)
	}
}

func TestCleanup_CustomWindow(t *testing.T) {
	store := testStore(t)
	now := time.Now()

	store.Insert(&logstore.Record{URL: "https://a.example.com", DateAdded: now.Add(-5 * 24 * time.Hour)})
	store.Insert(&logstore.Record{URL: "https://b.example.com", DateAdded: now.Add(-2 * 24 * time.Hour)})

	sweeper := New(store, 3, nil)
	if err := sweeper.Cleanup(context.Background()); err != nil {
		t.Fatal(err)
	}

	n, _ := store.Count()
	if n != 1 {
		t.Errorf("expected 1 record inside the 3-day window, got %d", n)
	}
}

func TestCleanup_EmptyTable(t *testing.T) {
	store := testStore(t)
	sweeper := New(store, 1, nil)
	if err := sweeper.Cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup on empty table failed: %v", err)
	}
}

func TestStart_Idempotent(t *testing.T) {
	store := testStore(t)
	store.Insert(&logstore.Record{URL: "https://old.example.com",
		DateAdded: time.Now().Add(-48 * time.Hour)})

	sweeper := New(store, 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper.Start(ctx, 10*time.Millisecond)
	sweeper.Start(ctx, 10*time.Millisecond) // second call must not re-register
	if !sweeper.started.Load() {
		t.Fatal("expected sweeper to be marked started")
	}

	deadline := time.After(2 * time.Second)
	for {
		n, err := store.Count()
		if err != nil {
			t.Fatal(err)
		}
		if n == 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("scheduled cleanup never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
