package EVMRPC

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golxlybridge/config"
)

// ErrUpstreamUnavailable wraps the last transient error once retries are
// exhausted.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// rate-limit / upstream-5xx shaped fragments seen from public RPCs.
// Errors crossing the ethclient boundary are free text, so classification
// keeps a pattern fallback alongside the tagged sentinel.
var transientFragments = []string{
	"too many requests",
	"429",
	"502",
	"503",
	"server error",
	"service unavailable",
	"rate limit",
}

// IsTransient reports whether err looks like a rate-limiting or upstream
// 5xx failure worth retrying. Anything else is surfaced immediately.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUpstreamUnavailable) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range transientFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}

// Retrier retries transient failures with exponential backoff. It holds no
// state beyond its parameters and is shared by every chain-facing
// component.
type Retrier struct {
	MaxRetries   int
	InitialDelay time.Duration
	// Sleep is swappable for tests; nil means time.Sleep
	Sleep func(time.Duration)
}

func DefaultRetrier() Retrier {
	return Retrier{
		MaxRetries:   config.RPC_MAX_RETRIES,
		InitialDelay: config.RPC_BACKOFF_SECONDS * time.Second,
	}
}

func (r Retrier) sleep(d time.Duration) {
	if r.Sleep != nil {
		r.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Do runs fn up to MaxRetries times, doubling the delay after each
// transient failure. Non-transient errors propagate without retry.
func (r Retrier) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := r.InitialDelay
	for attempt := 1; attempt <= r.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
		if attempt == r.MaxRetries {
			break
		}
		log.Printf("RPC rate limiting detected, retry %d/%d after %s: %s", attempt, r.MaxRetries, delay, lastErr.Error())
		r.sleep(delay)
		delay = delay * 2
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, lastErr)
}

// Call is Do for functions that return a value.
func Call[T any](ctx context.Context, r Retrier, fn func() (T, error)) (T, error) {
	var res T
	err := r.Do(ctx, func() error {
		var callErr error
		res, callErr = fn()
		return callErr
	})
	return res, err
}
