package pipeline

import (
	"context"
)

// creditsPerWorker sets the initial credit seed: with N workers there are at
// most 3N converted-but-unwritten batches in memory, regardless of how many
// or how large the input files are.
const creditsPerWorker = 3

// credits is the backpressure channel: a bounded token supply. A worker
// consumes one token per batch it emits; the supervisor returns one token
// per batch it has fully written. The channel capacity equals the initial
// seed, so the supply can never grow beyond it.
type credits struct {
	tokens chan struct{}
}

func newCredits(seed int) *credits {
	c := &credits{tokens: make(chan struct{}, seed)}
	for i := 0; i < seed; i++ {
		c.tokens <- struct{}{}
	}
	return c
}

// Acquire consumes one token, blocking until one is available or the context
// is cancelled.
func (c *credits) Acquire(ctx context.Context) error {
	select {
	case <-c.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns one token. A release beyond the initial seed is dropped
// so outstanding credits stay capped.
func (c *credits) Release() {
	select {
	case c.tokens <- struct{}{}:
	default:
	}
}

// Available reports how many tokens are currently free.
func (c *credits) Available() int {
	return len(c.tokens)
}
