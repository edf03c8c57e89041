package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Expirer is a store that can drop counters whose window has closed.
type Expirer interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Janitor periodically removes stale counters from an Expirer.
// The admission algorithm tolerates missing counters, so eviction only bounds memory.
type Janitor struct {
	store    Expirer
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
	done    chan struct{}
}

// NewJanitor creates a janitor sweeping store every interval.
func NewJanitor(store Expirer, interval time.Duration, logger *zap.Logger) *Janitor {
	return &Janitor{
		store:    store,
		interval: interval,
		now:      time.Now,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop.
// Start and Shutdown may be called from different goroutines.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cancel != nil || j.stopped {
		return nil
	}

	ctx, j.cancel = context.WithCancel(ctx)

	go j.loop(ctx)

	return nil
}

func (j *Janitor) loop(ctx context.Context) {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs a single eviction pass.
func (j *Janitor) Sweep(ctx context.Context) {
	removed, err := j.store.DeleteExpired(ctx, j.now())
	if err != nil {
		j.logger.Error("failed to delete expired counters", zap.Error(err))

		return
	}

	if removed > 0 {
		j.logger.Debug("deleted expired counters", zap.Int64("count", removed))
	}
}

// Shutdown stops the sweep loop and waits for it to exit.
func (j *Janitor) Shutdown() error {
	j.mu.Lock()
	cancel := j.cancel
	j.stopped = true
	j.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	<-j.done

	return nil
}
