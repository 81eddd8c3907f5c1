package rugcheck

import (
	"context"
	"errors"
	"testing"

	"solwatch/internal/model"
	"solwatch/internal/notify"
	"solwatch/logger"
)

type fakeChecker struct {
	calls   int
	result  *model.RugCheckResult
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeChecker) RugCheck(ctx context.Context, address string) (*model.RugCheckResult, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestCheckRefusesEmptyAddress(t *testing.T) {
	fake := &fakeChecker{}
	w := New(fake, notify.NewCenter(10), logger.Logger())

	if _, err := w.Check(context.Background(), "   "); !errors.Is(err, ErrEmptyAddress) {
		t.Fatalf("expected ErrEmptyAddress, got %v", err)
	}
	if fake.calls != 0 {
		t.Fatalf("expected no backend calls, got %d", fake.calls)
	}
}

func TestCheckRefusesWhileInFlight(t *testing.T) {
	fake := &fakeChecker{
		result:  &model.RugCheckResult{TokenAddress: "So1111", IsSafe: true},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	w := New(fake, notify.NewCenter(10), logger.Logger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := w.Check(context.Background(), "So1111"); err != nil {
			t.Errorf("first check failed: %v", err)
		}
	}()

	<-fake.started
	if _, err := w.Check(context.Background(), "So2222"); !errors.Is(err, ErrCheckInFlight) {
		t.Fatalf("expected ErrCheckInFlight, got %v", err)
	}

	close(fake.release)
	<-done

	if fake.calls != 1 {
		t.Fatalf("expected exactly one backend call, got %d", fake.calls)
	}
	if w.InFlight() {
		t.Fatal("in-flight flag not cleared")
	}
}

func TestCheckKeepsPreviousResultOnFailure(t *testing.T) {
	fake := &fakeChecker{result: &model.RugCheckResult{TokenAddress: "So1111", IsSafe: true, RiskScore: 0.1}}
	w := New(fake, notify.NewCenter(10), logger.Logger())

	if _, err := w.Check(context.Background(), "So1111"); err != nil {
		t.Fatalf("first check failed: %v", err)
	}

	fake.err = errors.New("backend down")
	if _, err := w.Check(context.Background(), "So2222"); err == nil {
		t.Fatal("expected second check to fail")
	}

	got := w.Result()
	if got == nil || got.TokenAddress != "So1111" {
		t.Fatalf("previous verdict lost: %+v", got)
	}
	if w.InFlight() {
		t.Fatal("in-flight flag not cleared after failure")
	}
}

func TestHighRiskThreshold(t *testing.T) {
	if HighRisk(0.5) {
		t.Fatal("0.5 must not be high risk")
	}
	if !HighRisk(0.51) {
		t.Fatal("0.51 must be high risk")
	}
}

func TestFillPercentClamps(t *testing.T) {
	cases := []struct {
		score float64
		want  int
	}{
		{-0.2, 0},
		{0, 0},
		{0.82, 82},
		{1, 100},
		{1.4, 100},
	}
	for _, c := range cases {
		if got := FillPercent(c.score); got != c.want {
			t.Fatalf("FillPercent(%v) = %d, want %d", c.score, got, c.want)
		}
	}
}
