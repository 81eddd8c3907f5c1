package dashboard

import (
	"context"
	"testing"
	"time"

	"solwatch/logger"
)

func TestResourceSamplerBoundsHistory(t *testing.T) {
	sampler := newResourceSampler(2, time.Millisecond, logger.Logger())

	for i := 0; i < 5; i++ {
		sampler.append(resourceSnapshot{Timestamp: time.Unix(int64(i), 0), CPUPercent: float64(i)})
	}

	snapshots := sampler.snapshot()
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
	}
	if snapshots[0].CPUPercent != 3 || snapshots[1].CPUPercent != 4 {
		t.Fatalf("unexpected snapshots retained: %#v", snapshots)
	}
}

func TestResourceSamplerCollectsSamples(t *testing.T) {
	sampler := newResourceSampler(10, 10*time.Millisecond, logger.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sampler.start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for len(sampler.snapshot()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("resource sampler did not collect samples in time")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	sampler.stop()

	snapshots := sampler.snapshot()
	latest := snapshots[len(snapshots)-1]
	if latest.MemoryTotal == 0 {
		t.Fatalf("expected memory stats to be populated: %#v", latest)
	}
	if latest.Timestamp.IsZero() {
		t.Fatalf("expected sample timestamp to be set: %#v", latest)
	}
}

func TestResourceSamplerStopIsIdempotent(t *testing.T) {
	sampler := newResourceSampler(10, time.Millisecond, logger.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sampler.start(ctx)
	sampler.start(ctx) // second start is a no-op
	sampler.stop()
	sampler.stop()
}
