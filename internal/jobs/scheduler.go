package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultGenerateDelay gives a preceding behavior-log write time to land
// before the batch is recomputed.
const DefaultGenerateDelay = 2 * time.Second

// Generator recomputes a user's recommendation batch.
type Generator interface {
	Generate(ctx context.Context, userID string) error
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, userID string) error

func (f GeneratorFunc) Generate(ctx context.Context, userID string) error {
	return f(ctx, userID)
}

// Scheduler runs deferred recommendation regenerations off the caller's
// critical path. Each user has at most one pending run; scheduling again
// before the delay elapses replaces the pending run. Failures are logged,
// never propagated.
type Scheduler struct {
	generator Generator
	delay     time.Duration

	mu      sync.Mutex
	pending map[string]*pendingRun
	wg      sync.WaitGroup
	stopped bool
}

type pendingRun struct {
	cancel context.CancelFunc
}

// NewScheduler creates a new Scheduler instance
func NewScheduler(generator Generator, delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = DefaultGenerateDelay
	}
	return &Scheduler{
		generator: generator,
		delay:     delay,
		pending:   make(map[string]*pendingRun),
	}
}

// Schedule queues a regeneration for the user after the configured delay.
// A pending run for the same user is cancelled and replaced.
func (s *Scheduler) Schedule(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if prev, ok := s.pending[userID]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &pendingRun{cancel: cancel}
	s.pending[userID] = run

	s.wg.Add(1)
	go s.run(ctx, userID, run)
}

func (s *Scheduler) run(ctx context.Context, userID string, run *pendingRun) {
	defer s.wg.Done()

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	s.mu.Lock()
	if s.pending[userID] == run {
		delete(s.pending, userID)
	}
	s.mu.Unlock()

	if err := s.generator.Generate(ctx, userID); err != nil {
		log.Printf("jobs: deferred generation failed for user %s: %v", userID, err)
	}
}

// Stop cancels all pending runs and waits for in-flight ones to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for _, run := range s.pending {
		run.cancel()
	}
	s.pending = make(map[string]*pendingRun)
	s.mu.Unlock()

	s.wg.Wait()
	log.Println("jobs: scheduler shutdown complete")
}
