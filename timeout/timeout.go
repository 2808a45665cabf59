// Package timeout provides a scoped deadline guard for blocking calls.
package timeout

import (
	"context"
	"errors"
	"time"
)

// Error reports an operation that exceeded its deadline.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Do runs fn under a deadline of d. The child deadline is released on
// every exit path and never disturbs a deadline already present on
// ctx, so scopes nest freely.
//
// When the deadline elapses, control returns to the caller with an
// *Error carrying msg. The abort is not cooperative: fn keeps running
// on its own goroutine until it observes the cancelled context, and
// whatever side effects it produced up to that point stand.
func Do(ctx context.Context, d time.Duration, msg string, fn func(ctx context.Context) error) error {
	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(tctx)
	}()

	select {
	case err := <-done:
		if err != nil && errors.Is(err, context.DeadlineExceeded) {
			return &Error{Message: msg}
		}
		return err
	case <-tctx.Done():
		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return &Error{Message: msg}
		}
		return tctx.Err()
	}
}
