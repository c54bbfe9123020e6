// Package retry implements the bounded and unbounded retry primitive shared
// by allowance polling, quote fetching and settlement polling.
package retry

import (
	"context"
	"time"

	"github.com/ClipFinance/funding-lib/common/errors"
)

// Options controls a retry loop.
//
// Fields:
// - Interval: the delay between attempts.
// - Retries: the number of retries after the first attempt. Nil means retry
//   indefinitely; callers in that mode must supply a terminating predicate.
// - NonRetryable: when true for an error, the error is raised immediately.
// - NonRetryableSilently: when true for an error, the loop exits with the
//   zero value and no error. Checked before NonRetryable.
type Options struct {
	Interval             time.Duration
	Retries              *int
	NonRetryable         func(error) bool
	NonRetryableSilently func(error) bool
}

// Retries returns a pointer to n, for bounding Options inline.
func Retries(n int) *int {
	return &n
}

// Do runs op until it succeeds, exits silently, raises a non-retryable error
// or exhausts its retries. The three-way exit (success / silent-zero / raise)
// and the check order are relied on by every polling loop in this library:
//
//  1. success returns the value;
//  2. a provider/network-changed signal is a benign environment change and
//     returns the zero value with no error;
//  3. exhausted retries re-raise the last error;
//  4. a silently non-retryable error returns the zero value with no error;
//  5. a non-retryable error re-raises immediately;
//  6. otherwise wait Interval, decrement the budget if bounded, and retry.
func Do[T any](ctx context.Context, op func(context.Context) (T, error), opts Options) (T, error) {
	var zero T

	remaining := -1
	bounded := opts.Retries != nil
	if bounded {
		remaining = *opts.Retries
	}

	for {
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}

		if errors.IsProviderChanged(err) {
			return zero, nil
		}

		if bounded && remaining <= 0 {
			return zero, err
		}

		if opts.NonRetryableSilently != nil && opts.NonRetryableSilently(err) {
			return zero, nil
		}

		if opts.NonRetryable != nil && opts.NonRetryable(err) {
			return zero, err
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(opts.Interval):
		}

		if bounded {
			remaining--
		}
	}
}
