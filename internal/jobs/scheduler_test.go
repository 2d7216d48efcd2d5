package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGenerator struct {
	mu    sync.Mutex
	users []string
	err   error
}

func (g *recordingGenerator) Generate(ctx context.Context, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.users = append(g.users, userID)
	return g.err
}

func (g *recordingGenerator) calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.users...)
}

func TestScheduler_RunsAfterDelay(t *testing.T) {
	gen := &recordingGenerator{}
	s := NewScheduler(gen, 20*time.Millisecond)
	defer s.Stop()

	s.Schedule("user-1")

	assert.Empty(t, gen.calls())

	require.Eventually(t, func() bool {
		return len(gen.calls()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"user-1"}, gen.calls())
}

func TestScheduler_RescheduleReplacesPending(t *testing.T) {
	gen := &recordingGenerator{}
	s := NewScheduler(gen, 50*time.Millisecond)
	defer s.Stop()

	s.Schedule("user-1")
	time.Sleep(10 * time.Millisecond)
	s.Schedule("user-1")

	require.Eventually(t, func() bool {
		return len(gen.calls()) >= 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"user-1"}, gen.calls())
}

func TestScheduler_StopCancelsPending(t *testing.T) {
	gen := &recordingGenerator{}
	s := NewScheduler(gen, 100*time.Millisecond)

	s.Schedule("user-1")
	s.Schedule("user-2")
	s.Stop()

	assert.Empty(t, gen.calls())

	// scheduling after Stop is a no-op
	s.Schedule("user-3")
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, gen.calls())
}

func TestScheduler_FailuresAreAbsorbed(t *testing.T) {
	gen := &recordingGenerator{err: assert.AnError}
	s := NewScheduler(gen, 10*time.Millisecond)
	defer s.Stop()

	s.Schedule("user-1")

	require.Eventually(t, func() bool {
		return len(gen.calls()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_IndependentUsers(t *testing.T) {
	gen := &recordingGenerator{}
	s := NewScheduler(gen, 10*time.Millisecond)
	defer s.Stop()

	s.Schedule("user-1")
	s.Schedule("user-2")

	require.Eventually(t, func() bool {
		return len(gen.calls()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, gen.calls())
}
