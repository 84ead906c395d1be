package memory

import (
	"testing"
	"time"
)

func TestInMemorySinkRecordsCopies(t *testing.T) {
	sink := NewInMemorySink()
	if err := sink.Record(Entry{SessionID: "s1", TriggerTime: time.Now(), Level: "MEDIUM", ActionTaken: "shift_later", UserResponse: "APPROVE"}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Record(Entry{SessionID: "s1", Level: "HIGH", ActionTaken: "none", UserResponse: "REJECT"}); err != nil {
		t.Fatal(err)
	}

	got := sink.Entries()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	got[0].Level = "mutated"
	if sink.Entries()[0].Level != "MEDIUM" {
		t.Fatal("Entries must return a copy")
	}
}
