package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DailyTask runs once near a fixed time of day. It is a one-shot timer, not a
// ticker: after each fire (or failure) it re-arms itself for the next day. If
// today's fire time has already passed at start, the first run is tomorrow.
type DailyTask struct {
	name   string
	fireAt func() (hour, minute int, ok bool)
	run    func(context.Context) error
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

// NewDailyTask builds a daily task. fireAt is re-evaluated before every arm
// so configuration changes take effect on the next cycle; returning ok=false
// skips a day and re-checks in an hour.
func NewDailyTask(name string, fireAt func() (int, int, bool), run func(context.Context) error, logger *zap.Logger) *DailyTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyTask{name: name, fireAt: fireAt, run: run, logger: logger, now: time.Now}
}

// Start arms the timer. Safe to call once.
func (t *DailyTask) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return
	}
	ctx, t.cancel = context.WithCancel(ctx)
	t.started = true
	go t.loop(ctx)
}

// Stop cancels the pending timer.
func (t *DailyTask) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	t.started = false
}

func (t *DailyTask) loop(ctx context.Context) {
	for {
		wait, ok := t.nextDelay()
		if !ok {
			wait = time.Hour
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if !ok {
			continue
		}
		if err := t.run(ctx); err != nil {
			// Fire-and-forget: log and re-arm for tomorrow, no retry loop.
			t.logger.Sugar().Errorw("daily task failed", "task", t.name, "error", err)
		} else {
			t.logger.Sugar().Infow("daily task completed", "task", t.name)
		}
	}
}

func (t *DailyTask) nextDelay() (time.Duration, bool) {
	hour, minute, ok := t.fireAt()
	if !ok {
		return 0, false
	}
	now := t.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now), true
}
