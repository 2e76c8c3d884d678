// Package scheduler runs periodic tasks off the caller's goroutine.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrStarted is returned by Start on a running scheduler.
var ErrStarted = errors.New("scheduler already started")

// Task is one periodic job. Ticks of the same task never overlap: a tick
// that fires while the previous one is still running is skipped.
type Task struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

// Scheduler owns a set of cancellable periodic tasks.
type Scheduler struct {
	tasks []Task
	log   *zap.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	group    *errgroup.Group
	inflight sync.WaitGroup
}

// New constructs a scheduler; tasks with a non-positive interval are rejected at Start.
func New(log *zap.Logger, tasks ...Task) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{tasks: append([]Task(nil), tasks...), log: log}
}

// Start launches one ticker loop per task. Ticks receive a context that is
// cancelled by Stop or by cancelling parent.
func (s *Scheduler) Start(parent context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrStarted
	}
	for _, t := range s.tasks {
		if t.Every <= 0 || t.Run == nil {
			return errors.New("scheduler: task " + t.Name + " needs a positive interval and a func")
		}
	}

	ctx, cancel := context.WithCancel(parent)
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range s.tasks {
		g.Go(func() error { return s.loop(gctx, t) })
	}
	s.cancel, s.group = cancel, g
	return nil
}

// Stop cancels all loops and waits for them and for in-flight ticks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, g := s.cancel, s.group
	s.cancel, s.group = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	_ = g.Wait()
	s.inflight.Wait()
}

func (s *Scheduler) loop(ctx context.Context, t Task) error {
	ticker := time.NewTicker(t.Every)
	defer ticker.Stop()

	var busy atomic.Bool
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !busy.CompareAndSwap(false, true) {
				s.log.Debug("tick skipped, previous still running", zap.String("task", t.Name))
				continue
			}
			s.inflight.Add(1)
			go func() {
				defer s.inflight.Done()
				defer busy.Store(false)
				if err := t.Run(ctx); err != nil {
					s.log.Debug("tick failed", zap.String("task", t.Name), zap.Error(err))
				}
			}()
		}
	}
}
