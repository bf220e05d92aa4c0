package validator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFailureKind(t *testing.T) {
	cases := map[string]error{
		"timed out":             Guard{}.timedOut(),
		"connect failed":        fmt.Errorf("%w: %w", ErrConnect, errors.New("refused")),
		"invalid response body": fmt.Errorf("%w: null", ErrInvalidBody),
		"cancelled":             fmt.Errorf("scan stopped: %w", context.Canceled),
		"unknown":               errors.New("boom"),
	}
	for want, err := range cases {
		assert.Equal(t, want, failureKind(err), err.Error())
	}
}

func TestFailureKind_ParentCancellationThroughGuard(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Guard{Timeout: time.Second}.Run(ctx, func(ctx context.Context) (Payload, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	assert.Equal(t, "cancelled", failureKind(err))
}
