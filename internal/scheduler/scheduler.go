package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/c0de128/mealmate-backup/internal/history"
	"github.com/c0de128/mealmate-backup/internal/logger"
)

// BackupRunner is the slice of the operations manager the scheduler needs.
type BackupRunner interface {
	CreateBackup(ctx context.Context) (*history.Record, error)
}

// Scheduler invokes the backup pipeline on a fixed interval. Every tick is
// best-effort: a failure, including a run still in flight from a previous
// tick, is logged and the scheduler simply waits for the next tick. Missed
// cycles are dropped, never queued.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	runner   BackupRunner
	log      logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a stopped scheduler. Call Start to arm it.
func New(runner BackupRunner, interval time.Duration, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Global()
	}
	return &Scheduler{
		interval: interval,
		runner:   runner,
		log:      log,
	}
}

// Start arms the timer. Calling Start on a running scheduler replaces the
// existing timer rather than stacking a second one.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)
	s.log.Info("backup scheduler started", "interval", s.interval.String())
}

// Stop cancels the timer and waits for the loop to exit. Calling Stop on a
// stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.log.Info("backup scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rec, err := s.runner.CreateBackup(ctx)
			if err != nil {
				s.log.Warn("scheduled backup failed", "error", err.Error())
				continue
			}
			s.log.Info("scheduled backup completed", "id", rec.ID, "file", rec.Filename)
		}
	}
}
