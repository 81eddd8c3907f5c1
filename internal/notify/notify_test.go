package notify

import "testing"

func TestCenterLimit(t *testing.T) {
	center := NewCenter(2)
	for i := 0; i < 5; i++ {
		center.Error("boom")
	}

	snapshot := center.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 notices in snapshot, got %d", len(snapshot))
	}
}

func TestPushAssignsIDAndLevel(t *testing.T) {
	center := NewCenter(10)
	n := center.Success("dashboard refreshed")
	if n.ID == "" {
		t.Fatal("notice ID not assigned")
	}
	if n.Level != LevelSuccess {
		t.Fatalf("unexpected level: %s", n.Level)
	}

	latest, ok := center.Latest()
	if !ok || latest.ID != n.ID {
		t.Fatalf("latest notice mismatch: %+v", latest)
	}
}

func TestLatestOnEmptyCenter(t *testing.T) {
	center := NewCenter(10)
	if _, ok := center.Latest(); ok {
		t.Fatal("expected no notice on empty center")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	center := NewCenter(10)
	center.Error("first")
	snapshot := center.Snapshot()
	snapshot[0].Message = "mutated"

	fresh := center.Snapshot()
	if fresh[0].Message != "first" {
		t.Fatal("snapshot aliases internal storage")
	}
}
