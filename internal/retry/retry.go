// Package retry runs an operation again after transient network failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/a3tai/mcp-form-drafter/internal/logger"
)

// Defaults for outbound calls to external collaborators.
const (
	DefaultMaxAttempts = 3
	DefaultBackoffStep = 400 * time.Millisecond
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts counts the first call. Values below 1 mean a single attempt.
	MaxAttempts int
	// Backoff returns the wait before the attempt that follows attempt.
	Backoff func(attempt int) time.Duration
	// Retryable decides whether an error is worth another attempt.
	Retryable func(err error) bool
	// Sleep waits for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error

	Log  *logger.Logger
	Name string
}

// Default returns three attempts with linear 400ms backoff on transient
// network errors.
func Default(log *logger.Logger, name string) Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     Linear(DefaultBackoffStep),
		Retryable:   IsTransient,
		Sleep:       SleepContext,
		Log:         log,
		Name:        name,
	}
}

// Linear returns a backoff of step × attempt.
func Linear(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return step * time.Duration(attempt)
	}
}

// SleepContext waits for d, returning early with ctx.Err() if ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do calls op until it succeeds, returns a non-retryable error, or the
// attempts run out. The last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := max(p.MaxAttempts, 1)
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	log := logger.OrNop(p.Log)

	var zero T
	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if attempt >= attempts || !retryable(err) {
			return zero, err
		}

		wait := time.Duration(0)
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		log.Warn("transient failure, retrying",
			"operation", p.Name,
			"attempt", attempt,
			"max_attempts", attempts,
			"backoff", wait.String(),
			"error", err,
		)
		if serr := sleep(ctx, wait); serr != nil {
			return zero, fmt.Errorf("%s: retry aborted: %w", p.Name, errors.Join(err, serr))
		}
	}
}

// IsTransient reports whether err is a connection reset, a refused
// connection, a DNS failure or a timeout.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
