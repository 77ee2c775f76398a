package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/c0de128/mealmate-backup/internal/history"
	"github.com/c0de128/mealmate-backup/internal/logger"
)

type countingRunner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRunner) CreateBackup(ctx context.Context) (*history.Record, error) {
	r.mu.Lock()
	r.calls++
	n := r.calls
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return &history.Record{ID: fmt.Sprintf("run-%d", n), Status: history.StatusSuccess}, nil
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func waitForCalls(t *testing.T, r *countingRunner, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.count() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("runner reached %d calls, want at least %d", r.count(), want)
}

func TestSchedulerInvokesBackups(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, 10*time.Millisecond, logger.Nop())

	s.Start()
	waitForCalls(t, runner, 2)
	s.Stop()

	settled := runner.count()
	time.Sleep(50 * time.Millisecond)
	if runner.count() != settled {
		t.Fatalf("runner called after Stop: %d -> %d", settled, runner.count())
	}
}

func TestSchedulerToleratesFailures(t *testing.T) {
	// Failures, including a run already in flight, are logged and the
	// scheduler waits for the next tick.
	runner := &countingRunner{err: errors.New("a backup is already in progress")}
	s := New(runner, 10*time.Millisecond, logger.Nop())

	s.Start()
	defer s.Stop()
	waitForCalls(t, runner, 3)
}

func TestSchedulerStartReplacesTimer(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, 10*time.Millisecond, logger.Nop())

	s.Start()
	s.Start() // must replace, not stack
	waitForCalls(t, runner, 2)
	s.Stop()

	// A stacked timer would keep two loops ticking; after Stop nothing
	// may fire.
	settled := runner.count()
	time.Sleep(50 * time.Millisecond)
	if runner.count() != settled {
		t.Fatalf("runner called after Stop: %d -> %d", settled, runner.count())
	}
}

func TestSchedulerStopIdempotent(t *testing.T) {
	s := New(&countingRunner{}, time.Hour, logger.Nop())

	s.Stop() // never started: no-op
	s.Start()
	s.Stop()
	s.Stop() // second stop: no-op
}
