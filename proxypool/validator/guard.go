package validator

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Guard bounds a single probe with a hard deadline.
type Guard struct {
	Timeout time.Duration
}

type probeResult struct {
	payload Payload
	err     error
}

// Run calls fn in its own goroutine with a context that expires after
// g.Timeout and returns as soon as fn finishes or the deadline passes.
// On expiry the result is ErrTimedOut; fn's context is cancelled so the
// prober tears down its connection, and its late result is discarded.
func (g Guard) Run(ctx context.Context, fn func(ctx context.Context) (Payload, error)) (Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	done := make(chan probeResult, 1)
	go func() {
		payload, err := fn(ctx)
		done <- probeResult{payload: payload, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, g.timedOut()
		}
		return r.payload, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, g.timedOut()
		}
		return nil, ctx.Err()
	}
}

func (g Guard) timedOut() error {
	return fmt.Errorf("%w after %s", ErrTimedOut, g.Timeout)
}
