// Package rugcheck drives the on-demand token safety check. At most one check
// runs at a time; the latest verdict is kept until the next successful check
// replaces it.
package rugcheck

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"solwatch/internal/metrics"
	"solwatch/internal/model"
	"solwatch/internal/notify"
	"solwatch/logger"
)

var (
	// ErrEmptyAddress is returned when the submitted address is blank after
	// trimming. No backend request is made.
	ErrEmptyAddress = errors.New("token address is empty")

	// ErrCheckInFlight is returned when a check is already running. The
	// running check is unaffected.
	ErrCheckInFlight = errors.New("rug check already in progress")
)

// Checker is the backend call the workflow depends on. *api.Client satisfies
// it.
type Checker interface {
	RugCheck(ctx context.Context, address string) (*model.RugCheckResult, error)
}

// Workflow serialises rug checks and retains the most recent verdict.
type Workflow struct {
	checker Checker
	log     *logger.Entry
	notices *notify.Center

	mu       sync.Mutex
	inFlight bool
	result   *model.RugCheckResult
}

func New(checker Checker, notices *notify.Center, log *logger.Log) *Workflow {
	return &Workflow{
		checker: checker,
		log:     log.WithComponent("rugcheck"),
		notices: notices,
	}
}

// Check runs one safety check for the given address. An empty address and a
// check already in flight are both refused before any network traffic. On
// failure the previous verdict is left untouched.
func (w *Workflow) Check(ctx context.Context, address string) (*model.RugCheckResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyAddress
	}

	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		logger.IncrementRugcheckRefused()
		metrics.IncrementRugcheck("refused")
		return nil, ErrCheckInFlight
	}
	w.inFlight = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.inFlight = false
		w.mu.Unlock()
	}()

	start := time.Now()
	result, err := w.checker.RugCheck(ctx, address)
	if err != nil {
		logger.IncrementRugcheckFailed()
		metrics.IncrementRugcheck("failed")
		w.notices.Error("Rug check failed for " + address)
		w.log.WithError(err).WithFields(logger.Fields{"address": address}).Error("rug check failed")
		return nil, err
	}

	w.mu.Lock()
	w.result = result
	w.mu.Unlock()

	logger.IncrementRugcheckOK()
	metrics.IncrementRugcheck("ok")
	w.notices.Success("Rug check completed for " + address)
	logger.LogPerformanceEntry(w.log, "rugcheck", "check", time.Since(start), logger.Fields{
		"address":    address,
		"is_safe":    result.IsSafe,
		"risk_score": result.RiskScore,
	})
	return result, nil
}

// Result returns the verdict of the last successful check, or nil if none has
// completed yet.
func (w *Workflow) Result() *model.RugCheckResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// InFlight reports whether a check is currently running.
func (w *Workflow) InFlight() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight
}

// HighRisk reports whether a risk score crosses the severity threshold used
// to colour the verdict.
func HighRisk(score float64) bool {
	return score > 0.5
}

// FillPercent maps a 0..1 risk score onto a 0..100 meter width, clamping out
// of range scores.
func FillPercent(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 100
	}
	return int(math.Round(score * 100))
}
