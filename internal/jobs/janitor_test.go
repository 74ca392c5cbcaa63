package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSweeper struct {
	mu      sync.Mutex
	cutoffs []time.Time
	evict   int
}

func (r *recordingSweeper) Sweep(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cutoffs = append(r.cutoffs, cutoff)
	return r.evict
}

func (r *recordingSweeper) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cutoffs)
}

func TestJanitor(t *testing.T) {
	t.Run("sweeps with a cutoff one TTL in the past", func(t *testing.T) {
		sweeper := &recordingSweeper{evict: 1}
		ttl := 20 * time.Millisecond
		janitor := NewJanitor(sweeper, ttl)

		go janitor.Start(context.Background())

		require.Eventually(t, func() bool { return sweeper.calls() >= 2 },
			time.Second, 5*time.Millisecond)
		janitor.Stop()

		sweeper.mu.Lock()
		defer sweeper.mu.Unlock()
		for _, cutoff := range sweeper.cutoffs {
			assert.WithinDuration(t, time.Now().Add(-ttl), cutoff, time.Second)
		}
	})

	t.Run("stop terminates the loop", func(t *testing.T) {
		janitor := NewJanitor(&recordingSweeper{}, time.Hour)

		done := make(chan struct{})
		go func() {
			janitor.Start(context.Background())
			close(done)
		}()

		janitor.Stop()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("janitor did not stop")
		}
	})

	t.Run("context cancellation terminates the loop", func(t *testing.T) {
		janitor := NewJanitor(&recordingSweeper{}, time.Hour)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			janitor.Start(ctx)
			close(done)
		}()

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("janitor did not stop on context cancellation")
		}
	})

	t.Run("short TTL caps the poll interval", func(t *testing.T) {
		janitor := NewJanitor(&recordingSweeper{}, 10*time.Millisecond)
		assert.Equal(t, 10*time.Millisecond, janitor.pollInterval)

		janitor = NewJanitor(&recordingSweeper{}, time.Hour)
		assert.Equal(t, time.Minute, janitor.pollInterval)
	})
}
