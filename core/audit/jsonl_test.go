package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/voyagent/tripmend/core/model"
)

func testStore(t *testing.T) *JSONLStore {
	t.Helper()
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "audit.log"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestJSONLAppendAndQuery(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 12, 10, 0, 0, 0, time.UTC)

	recs := []Record{
		{ID: "1", SessionID: "s1", Timestamp: base, EventType: "conditions", Action: model.Action{Kind: model.DeferPoi, Target: "Old Town Walk"}, Executed: true, Strategy: "shift_later", BeforeHash: "aa", AfterHash: "bb"},
		{ID: "2", SessionID: "s1", Timestamp: base.Add(time.Hour), Action: model.Action{Kind: model.NoAction}, Executed: true},
		{ID: "3", SessionID: "s2", Timestamp: base.Add(2 * time.Hour), Action: model.Action{Kind: model.DeferPoi}, Blocked: "forbidden parameter"},
	}
	for _, r := range recs {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := store.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].Strategy != "shift_later" || all[0].BeforeHash != "aa" {
		t.Errorf("record fields not round-tripped: %+v", all[0])
	}

	bySession, err := store.Query(ctx, Query{SessionID: "s1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(bySession) != 2 {
		t.Fatalf("session filter returned %d records", len(bySession))
	}

	byKind, err := store.Query(ctx, Query{Kind: model.DeferPoi, HasKind: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(byKind) != 2 {
		t.Fatalf("kind filter returned %d records", len(byKind))
	}

	windowed, err := store.Query(ctx, Query{Start: base.Add(30 * time.Minute), End: base.Add(90 * time.Minute)})
	if err != nil {
		t.Fatal(err)
	}
	if len(windowed) != 1 || windowed[0].ID != "2" {
		t.Fatalf("time window returned %+v", windowed)
	}
}

func TestJSONLQuerySkipsCorruptLines(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	if err := store.Append(ctx, Record{ID: "1", SessionID: "s1", Timestamp: time.Now()}); err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(store.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{not json}\n"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	recs, err := store.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected the valid record only, got %d", len(recs))
	}
}
