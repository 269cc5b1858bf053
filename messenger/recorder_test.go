package messenger

import "testing"

func TestRecorderEvictsOldestAtLimit(t *testing.T) {
	rec := NewRecorder(3)
	for _, payload := range []string{"a", "b", "c", "d", "e"} {
		rec.Record(DirectionIn, []byte(payload))
	}

	records := rec.Snapshot()
	if len(records) != 3 {
		t.Fatalf("Expected 3 retained records, got %d", len(records))
	}
	if records[0].Payload != "c" || records[2].Payload != "e" {
		t.Errorf("Expected oldest-first order c..e, got %q..%q", records[0].Payload, records[2].Payload)
	}
	if rec.Dropped() != 2 {
		t.Errorf("Expected 2 dropped records, got %d", rec.Dropped())
	}
}

func TestRecorderAssignsUniqueIDs(t *testing.T) {
	rec := NewRecorder(0)
	rec.Record(DirectionOut, []byte("x"))
	rec.Record(DirectionOut, []byte("y"))

	records := rec.Snapshot()
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].ID == "" || records[0].ID == records[1].ID {
		t.Errorf("Expected distinct non-empty IDs, got %q and %q", records[0].ID, records[1].ID)
	}
	if records[0].At.IsZero() {
		t.Error("Expected a timestamp on each record")
	}
}

func TestNilRecorderIsInert(t *testing.T) {
	var rec *Recorder
	rec.Record(DirectionIn, []byte("x")) // must not panic
	if rec.Snapshot() != nil {
		t.Error("Nil recorder should report no records")
	}
	if rec.Dropped() != 0 {
		t.Error("Nil recorder should report no drops")
	}
}
