package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default interval between ticks
const defaultTickInterval = 10 * time.Millisecond

// TickScheduler runs deferred callbacks on its next tick. The browse
// coordinator pushes route synchronization through it so a filter change
// never re-enters the coordinator while its own mutation is still on the
// stack. Callbacks queued during one tick run on the next.
type TickScheduler struct {
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	queue   []func()
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// TickSchedulerOption is a functional option for configuring the scheduler
type TickSchedulerOption func(*TickScheduler)

// WithTickInterval sets the interval between ticks
func WithTickInterval(interval time.Duration) TickSchedulerOption {
	return func(s *TickScheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// NewTickScheduler creates a new tick scheduler
func NewTickScheduler(logger *zap.Logger, opts ...TickSchedulerOption) *TickScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TickScheduler{
		interval: defaultTickInterval,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defer queues a callback for the next tick. Safe to call before Start;
// queued callbacks run once the scheduler is started.
func (s *TickScheduler) Defer(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

// Start starts the tick loop
func (s *TickScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("tick scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop stops the scheduler gracefully. Callbacks already drained keep
// running to completion; callbacks still queued are dropped.
func (s *TickScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("tick scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tick drains the queue immediately. Exposed for tests and for callers that
// need deterministic flushing instead of waiting for the interval.
func (s *TickScheduler) Tick() {
	s.mu.Lock()
	pending := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range pending {
		s.run(fn)
	}
}

func (s *TickScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// run executes one callback, recovering from panics so a bad callback never
// kills the tick loop
func (s *TickScheduler) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("deferred callback panicked", zap.Any("panic", r))
		}
	}()
	fn()
}
