package retry

import (
	"context"
	"errors"
	"time"
)

// TimeoutError reports that a wrapped call exceeded its deadline. Label names
// the call site so the failure is attributable without a stack trace.
type TimeoutError struct {
	Label    string
	Deadline time.Duration
}

func (e *TimeoutError) Error() string {
	return "timeout after " + e.Deadline.String() + ": " + e.Label
}

// IsTimeout reports whether err classifies as a deadline failure, either a
// [*TimeoutError] produced by [WithTimeout] or a raw context deadline.
func IsTimeout(err error) bool {
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// WithTimeout runs fn under a deadline of d and converts a missed deadline
// into a [*TimeoutError] carrying label. The derived context is cancelled on
// both paths so no timer outlives the call.
func WithTimeout[T any](ctx context.Context, d time.Duration, label string, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	out, err := fn(callCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		// Distinguish the call's own deadline from a caller cancellation.
		if ctx.Err() == nil {
			var zero T
			return zero, &TimeoutError{Label: label, Deadline: d}
		}
	}
	return out, err
}

// OnTimeout invokes fn and re-invokes it after backoff whenever the failure
// classifies as a timeout. retries bounds the number of re-invocations beyond
// the first attempt; a negative value retries until the parent context is
// done. Non-timeout failures return immediately.
func OnTimeout[T any](ctx context.Context, retries int, backoff time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var (
		out T
		err error
	)
	for attempt := 0; ; attempt++ {
		out, err = fn(ctx)
		if err == nil || !IsTimeout(err) {
			return out, err
		}
		if retries >= 0 && attempt >= retries {
			return out, err
		}
		if werr := wait(ctx, backoff); werr != nil {
			var zero T
			return zero, werr
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
