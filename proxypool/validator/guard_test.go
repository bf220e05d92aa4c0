package validator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_ReturnsProbeResult(t *testing.T) {
	g := Guard{Timeout: time.Second}

	payload, err := g.Run(context.Background(), func(ctx context.Context) (Payload, error) {
		return Payload{"clientIp": "9.9.9.9"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "9.9.9.9", payload["clientIp"])

	boom := errors.New("boom")
	_, err = g.Run(context.Background(), func(ctx context.Context) (Payload, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestGuard_TimesOutAndCancelsProbe(t *testing.T) {
	g := Guard{Timeout: 50 * time.Millisecond}
	cancelled := make(chan struct{})

	start := time.Now()
	_, err := g.Run(context.Background(), func(ctx context.Context) (Payload, error) {
		<-ctx.Done()
		close(cancelled)
		return nil, ctx.Err()
	})
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.Less(t, time.Since(start), time.Second)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("probe context was not cancelled")
	}
}

func TestGuard_DoesNotWaitForStuckProbe(t *testing.T) {
	g := Guard{Timeout: 20 * time.Millisecond}
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, err := g.Run(context.Background(), func(ctx context.Context) (Payload, error) {
		// ignores ctx entirely
		<-release
		return Payload{}, nil
	})
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGuard_ParentCancellation(t *testing.T) {
	g := Guard{Timeout: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Run(ctx, func(ctx context.Context) (Payload, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrTimedOut))
}
