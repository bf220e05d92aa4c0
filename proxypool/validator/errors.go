package validator

import (
	"context"
	"errors"
)

// Probe failure kinds. Errors returned by a Prober wrap exactly one of these.
var (
	ErrConnect           = errors.New("connect failed")
	ErrHandshake         = errors.New("tls handshake failed")
	ErrIO                = errors.New("i/o error")
	ErrTimedOut          = errors.New("timed out")
	ErrMalformedResponse = errors.New("malformed HTTP response")
	ErrInvalidBody       = errors.New("invalid response body")
)

// failureKind names the sentinel err wraps, for log fields.
func failureKind(err error) string {
	for _, kind := range []error{ErrTimedOut, ErrConnect, ErrHandshake, ErrIO, ErrMalformedResponse, ErrInvalidBody} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	return "unknown"
}
