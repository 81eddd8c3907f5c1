package dashboard

import (
	"context"
	"sync"
	"time"

	"solwatch/internal/api"
	"solwatch/internal/model"
	"solwatch/logger"
)

// StatusPoller keeps the backend health summary for the footer current. A
// failed poll clears the summary rather than showing stale health.
type StatusPoller struct {
	client   *api.Client
	interval time.Duration
	log      *logger.Entry

	mu     sync.RWMutex
	status model.SystemStatus
	ok     bool
}

func NewStatusPoller(client *api.Client, interval time.Duration, log *logger.Log) *StatusPoller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StatusPoller{
		client:   client,
		interval: interval,
		log:      log.WithComponent("status_poller"),
	}
}

func (p *StatusPoller) run(ctx context.Context) {
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *StatusPoller) poll(ctx context.Context) {
	status, err := p.client.SystemStatus(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.ok = false
		p.status = model.SystemStatus{}
		p.log.WithError(err).Debug("system status poll failed")
		return
	}
	p.status = status
	p.ok = true
}

func (p *StatusPoller) current() (model.SystemStatus, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status, p.ok
}
