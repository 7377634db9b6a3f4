// Package autopick drives semi-automatic manual play by invoking a pick
// action on a fixed cadence.
package autopick

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the cadence used when none is configured.
const DefaultInterval = 600 * time.Millisecond

// State is the pacer's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Pacer calls an action every interval until stopped. At most one schedule
// is outstanding at a time.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	cancel   context.CancelFunc
	logger   *zap.Logger
}

// NewPacer creates an idle pacer. A non-positive interval selects
// DefaultInterval.
func NewPacer(interval time.Duration, logger *zap.Logger) *Pacer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pacer{
		interval: interval,
		logger:   logger.Named("autopick"),
	}
}

// Interval returns the pacing interval.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Start begins calling action every interval. It returns false and does
// nothing when the pacer is already running.
func (p *Pacer) Start(action func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.loop(ctx, action)

	p.logger.Debug("auto-pick started", zap.Duration("interval", p.interval))
	return true
}

// Stop cancels the schedule. It returns false when the pacer was idle. Stop
// may be called from inside the action.
func (p *Pacer) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel == nil {
		return false
	}
	p.cancel()
	p.cancel = nil

	p.logger.Debug("auto-pick stopped")
	return true
}

// Running reports whether a schedule is outstanding.
func (p *Pacer) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// State returns StateRunning or StateIdle.
func (p *Pacer) State() State {
	if p.Running() {
		return StateRunning
	}
	return StateIdle
}

func (p *Pacer) loop(ctx context.Context, action func()) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A stop may race with the tick; never fire after it.
			if ctx.Err() != nil {
				return
			}
			action()
		}
	}
}
