package EVMRPC

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golxlybridge/config"
)

// ErrConfirmationTimeout marks a poll loop that closed its window before
// the lookup ever succeeded.
var ErrConfirmationTimeout = errors.New("confirmation timeout")

// Poller bounds a repeated lookup, receipt waiting mostly. Unlike
// Retrier it keeps polling through any error until the window closes; a
// failing lookup just means "not yet".
type Poller struct {
	Interval time.Duration
	Timeout  time.Duration
	// Sleep is swappable for tests; nil means time.Sleep
	Sleep func(time.Duration)
}

func DefaultPoller() Poller {
	return Poller{
		Interval: config.RECEIPT_POLL_SECONDS * time.Second,
		Timeout:  config.TX_CONFIRMATION_TIMEOUT_SECONDS * time.Second,
	}
}

func (p Poller) sleep(d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Poll runs fn at Interval cadence until it succeeds, the context is
// done, or Timeout worth of attempts is used up. The timeout error
// wraps ErrConfirmationTimeout and carries the last lookup error.
func Poll[T any](ctx context.Context, p Poller, fn func() (T, error)) (T, error) {
	var zero T

	attempts := int(p.Timeout / p.Interval)
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		res, err := fn()
		if err == nil {
			return res, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		p.sleep(p.Interval)
	}
	return zero, fmt.Errorf("%w after %s: %v", ErrConfirmationTimeout, p.Timeout, lastErr)
}
