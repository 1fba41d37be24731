// Package retry classifies the outcome of fallible external calls and applies
// a bounded retry policy to the transient ones.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Outcome is the class of a single call attempt.
type Outcome int

const (
	Success Outcome = iota
	TransientFailure
	PermanentFailure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case TransientFailure:
		return "transient"
	case PermanentFailure:
		return "permanent"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the value or the classified failure of one attempt.
type Result[T any] struct {
	Outcome Outcome
	Value   T
	Err     error
}

// Ok returns a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{Outcome: Success, Value: v}
}

// Transient returns a failure that may succeed if tried again.
func Transient[T any](err error) Result[T] {
	return Result[T]{Outcome: TransientFailure, Err: err}
}

// Permanent returns a failure that will not be retried.
func Permanent[T any](err error) Result[T] {
	return Result[T]{Outcome: PermanentFailure, Err: err}
}

// ErrExhausted is wrapped by Do when every attempt failed transiently.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy bounds the retries of transient failures.
type Policy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int
	// InitialBackoff is the wait after the first failed attempt.
	InitialBackoff time.Duration
	// MaxBackoff caps the wait between attempts. Zero means no cap.
	MaxBackoff time.Duration
	// Multiplier grows the wait after each failure.
	Multiplier float64
}

// DefaultPolicy returns three attempts with exponential backoff from 200ms.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:       3,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		Multiplier:     2,
	}
}

// Backoff returns the wait before attempt n+1, where n counts from 1.
func (p Policy) Backoff(n int) time.Duration {
	d := float64(p.InitialBackoff)
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	for i := 1; i < n; i++ {
		d *= mult
		if p.MaxBackoff > 0 && d >= float64(p.MaxBackoff) {
			return p.MaxBackoff
		}
	}
	return time.Duration(d)
}

// Do calls fn until it succeeds, fails permanently, the attempts run out or
// ctx is done. attempt counts from 1.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) Result[T]) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for n := 1; n <= attempts; n++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		r := fn(ctx, n)
		switch r.Outcome {
		case Success:
			return r.Value, nil
		case PermanentFailure:
			return zero, r.Err
		}
		lastErr = r.Err

		if n == attempts {
			break
		}

		timer := time.NewTimer(p.Backoff(n))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}
