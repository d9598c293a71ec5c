// Package retry provides bounded exponential backoff with jitter for
// transient classes of failure (C11 of the ingestion/QA engine).
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Policy holds the parameters of a retry run: attempt budget, backoff shape,
// and the predicate deciding whether a given error is worth retrying at all.
// A nil IsTransient defaults to DefaultIsTransient.
type Policy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
	IsTransient    func(error) bool
}

// DefaultPolicy is a general-purpose retry policy: 3 attempts, 1s base delay,
// 30s cap, doubling, ±10% jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		BaseDelay:      1 * time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// FeedFetchPolicy favors persistence over a flaky feed host.
func FeedFetchPolicy() Policy {
	return Policy{
		MaxAttempts:    5,
		BaseDelay:      1 * time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// SummarizerPolicy matches §4.6's per-item budget for the LLM-backed stages:
// 3 attempts, 0.5s/1s/2s backoff, ±20% jitter.
func SummarizerPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		BaseDelay:      500 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}

// BackendPolicy governs calls into the retrieval backend (C6).
func BackendPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		BaseDelay:      500 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}

func (p Policy) transientPredicate() func(error) bool {
	if p.IsTransient != nil {
		return p.IsTransient
	}
	return DefaultIsTransient
}

// Do executes fn under the given policy. It returns fn's result on success,
// or the last error once the attempt budget is exhausted or the policy's
// predicate rejects the error as non-transient. Cancellation of ctx aborts
// the wait between attempts immediately.
func Do(ctx context.Context, p Policy, fn func() error) error {
	isTransient := p.transientPredicate()
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry", slog.Int("attempt", attempt))
			}
			return nil
		}

		if !isTransient(lastErr) {
			return lastErr
		}

		if attempt == p.MaxAttempts {
			break
		}

		delay := time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1)))
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
		delay = addJitter(delay, p.JitterFraction)

		slog.Warn("operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", p.MaxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", lastErr))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w", p.MaxAttempts, lastErr)
}

// DefaultIsTransient classifies network timeouts, connection-level syscall
// errors, and 5xx/429/408 HTTPError values as transient. Context
// cancellation and deadline errors are never transient — the caller asked
// to stop.
func DefaultIsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode >= 500 && httpErr.StatusCode < 600 {
			return true
		}
		if httpErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		if httpErr.StatusCode == http.StatusRequestTimeout {
			return true
		}
		return false
	}

	return false
}

// HTTPError carries a response status code through the retry predicate.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func addJitter(duration time.Duration, jitterFraction float64) time.Duration {
	if jitterFraction <= 0 {
		return duration
	}
	if jitterFraction > 1.0 {
		jitterFraction = 1.0
	}
	// #nosec G404 -- jitter does not need cryptographic randomness.
	sign := 1.0
	if rand.Float64() < 0.5 {
		sign = -1.0
	}
	jitter := time.Duration(rand.Float64() * float64(duration) * jitterFraction * sign)
	result := duration + jitter
	if result < 0 {
		return 0
	}
	return result
}
