// Package jobs runs background maintenance loops for the server.
package jobs

import (
	"context"
	"log"
	"time"
)

// SessionSweeper evicts sessions older than the cutoff and reports how many
// were removed.
type SessionSweeper interface {
	Sweep(cutoff time.Time) int
}

// Janitor periodically evicts expired document sessions from a
// server-resident store. It only exists when a session TTL is configured;
// the default deployment keeps sessions until restart.
type Janitor struct {
	store        SessionSweeper
	ttl          time.Duration
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewJanitor creates a Janitor sweeping sessions older than ttl. The sweep
// interval defaults to one minute, capped at the TTL itself for short TTLs.
func NewJanitor(store SessionSweeper, ttl time.Duration) *Janitor {
	pollInterval := time.Minute
	if ttl < pollInterval {
		pollInterval = ttl
	}
	return &Janitor{
		store:        store,
		ttl:          ttl,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the janitor's sweep loop. It blocks until the context is
// cancelled or Stop is called; run it in a goroutine.
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.pollInterval)
	defer ticker.Stop()
	defer close(j.doneChan)

	log.Printf("session janitor started (ttl: %v, interval: %v)", j.ttl, j.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("session janitor stopped: context cancelled")
			return
		case <-j.stopChan:
			log.Println("session janitor stopped: stop signal received")
			return
		case now := <-ticker.C:
			if evicted := j.store.Sweep(now.Add(-j.ttl)); evicted > 0 {
				log.Printf("session janitor evicted %d expired session(s)", evicted)
			}
		}
	}
}

// Stop gracefully stops the janitor and waits for the loop to exit.
func (j *Janitor) Stop() {
	close(j.stopChan)
	<-j.doneChan
}
