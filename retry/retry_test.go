package retry

import (
	"context"
	"testing"
	"time"

	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	t.Run("success on first attempt", func(t *testing.T) {
		attempts := 0
		value, err := Do(context.Background(), func(ctx context.Context) (string, error) {
			attempts++
			return "ok", nil
		}, Options{Interval: time.Millisecond})
		require.NoError(t, err)
		assert.Equal(t, "ok", value)
		assert.Equal(t, 1, attempts)
	})

	t.Run("exhaustion calls op retries plus one times and re-raises", func(t *testing.T) {
		boom := errors.New("boom")
		attempts := 0
		_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
			attempts++
			return 0, boom
		}, Options{Interval: 0, Retries: Retries(4)})
		require.Error(t, err)
		assert.Equal(t, boom, err)
		assert.Equal(t, 5, attempts)
	})

	t.Run("non-retryable short-circuits regardless of budget", func(t *testing.T) {
		attempts := 0
		_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
			attempts++
			return 0, errors.New("hard")
		}, Options{
			Interval:     time.Millisecond,
			Retries:      Retries(10),
			NonRetryable: func(error) bool { return true },
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("silent exit returns zero value without error", func(t *testing.T) {
		attempts := 0
		value, err := Do(context.Background(), func(ctx context.Context) (string, error) {
			attempts++
			return "partial", errors.New("give up quietly")
		}, Options{
			Interval:             time.Millisecond,
			Retries:              Retries(10),
			NonRetryableSilently: func(error) bool { return true },
		})
		require.NoError(t, err)
		assert.Empty(t, value)
		assert.Equal(t, 1, attempts)
	})

	t.Run("silent check runs before hard non-retryable check", func(t *testing.T) {
		_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
			return 0, errors.New("both predicates match")
		}, Options{
			Interval:             time.Millisecond,
			Retries:              Retries(3),
			NonRetryable:         func(error) bool { return true },
			NonRetryableSilently: func(error) bool { return true },
		})
		assert.NoError(t, err)
	})

	t.Run("provider changed is a benign empty success", func(t *testing.T) {
		attempts := 0
		value, err := Do(context.Background(), func(ctx context.Context) (string, error) {
			attempts++
			return "", errors.Wrap(funderrors.ErrProviderChanged, "eth_call")
		}, Options{
			Interval: time.Millisecond,
			Retries:  Retries(5),
			// Even a hard predicate must not win over the benign signal.
			NonRetryable: func(error) bool { return true },
		})
		require.NoError(t, err)
		assert.Empty(t, value)
		assert.Equal(t, 1, attempts)
	})

	t.Run("recovers after transient failures", func(t *testing.T) {
		attempts := 0
		value, err := Do(context.Background(), func(ctx context.Context) (int, error) {
			attempts++
			if attempts < 3 {
				return 0, errors.New("transient")
			}
			return 42, nil
		}, Options{Interval: time.Millisecond, Retries: Retries(5)})
		require.NoError(t, err)
		assert.Equal(t, 42, value)
		assert.Equal(t, 3, attempts)
	})

	t.Run("unbounded mode retries until a predicate fires", func(t *testing.T) {
		attempts := 0
		_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
			attempts++
			return 0, errors.New("keep going")
		}, Options{
			Interval:     0,
			NonRetryable: func(error) bool { return attempts >= 7 },
		})
		require.Error(t, err)
		assert.Equal(t, 7, attempts)
	})

	t.Run("context cancellation stops the wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		attempts := 0
		_, err := Do(ctx, func(ctx context.Context) (int, error) {
			attempts++
			if attempts == 2 {
				cancel()
			}
			return 0, errors.New("fail")
		}, Options{Interval: 50 * time.Millisecond, Retries: Retries(10)})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 2, attempts)
	})
}
