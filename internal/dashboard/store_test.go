package dashboard

import (
	"testing"
	"time"

	"solwatch/internal/aggregator"
)

func TestCycleStoreLimit(t *testing.T) {
	store := newCycleStore(2)
	for i := 0; i < 5; i++ {
		store.handle(aggregator.Cycle{ID: string(rune('a' + i)), StartedAt: time.Unix(int64(i), 0)})
	}

	snapshot := store.snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 cycles in snapshot, got %d", len(snapshot))
	}
	if snapshot[0].ID != "d" || snapshot[1].ID != "e" {
		t.Fatalf("unexpected cycles retained: %#v", snapshot)
	}
}

func TestCycleStoreLatest(t *testing.T) {
	store := newCycleStore(10)

	if _, ok := store.latest(); ok {
		t.Fatal("expected no latest cycle on an empty store")
	}

	store.handle(aggregator.Cycle{ID: "one"})
	store.handle(aggregator.Cycle{ID: "two", Failed: true})

	latest, ok := store.latest()
	if !ok || latest.ID != "two" || !latest.Failed {
		t.Fatalf("unexpected latest cycle: %#v", latest)
	}
}

func TestCycleStoreSnapshotIsACopy(t *testing.T) {
	store := newCycleStore(10)
	store.handle(aggregator.Cycle{ID: "one"})

	snapshot := store.snapshot()
	snapshot[0].ID = "mutated"

	again := store.snapshot()
	if again[0].ID != "one" {
		t.Fatal("snapshot must not share backing with the store")
	}
}
