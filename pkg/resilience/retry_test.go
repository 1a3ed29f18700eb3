package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notespace/pkg/resilience"
)

var (
	errTemporary = errors.New("temporary")
	errPermanent = errors.New("permanent")
)

func fastRetry(attempts int) resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 2 * time.Millisecond
	return cfg
}

func TestRetryExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		r := resilience.NewRetry("test", fastRetry(3))

		err := r.Execute(ctx, func() error {
			calls++
			if calls < 3 {
				return errTemporary
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error when attempts exhausted", func(t *testing.T) {
		calls := 0
		r := resilience.NewRetry("test", fastRetry(2))

		err := r.Execute(ctx, func() error {
			calls++
			return errTemporary
		})

		require.ErrorIs(t, err, errTemporary)
		assert.Equal(t, 2, calls)
	})

	t.Run("non retryable error stops immediately", func(t *testing.T) {
		cfg := fastRetry(5)
		cfg.ShouldRetry = func(err error) bool { return !errors.Is(err, errPermanent) }

		calls := 0
		err := resilience.NewRetry("test", cfg).Execute(ctx, func() error {
			calls++
			return errPermanent
		})

		require.ErrorIs(t, err, errPermanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context interrupts backoff", func(t *testing.T) {
		cfg := fastRetry(3)
		cfg.InitialBackoff = time.Hour
		cfg.MaxBackoff = time.Hour

		cctx, cancel := context.WithCancel(ctx)
		err := resilience.NewRetry("test", cfg).Execute(cctx, func() error {
			cancel()
			return errTemporary
		})

		require.ErrorIs(t, err, resilience.ErrRetryCanceled)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPolicyExecute(t *testing.T) {
	ctx := context.Background()

	policy := resilience.NewPolicy("mailer", fastRetry(2), resilience.BreakerConfig{
		FailureThreshold: 1,
		OpenTimeout:      time.Hour,
		SuccessThreshold: 1,
	})

	got, err := resilience.Execute(ctx, policy, "compute", func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	calls := 0
	_, err = resilience.Execute(ctx, policy, "compute", func() (int, error) {
		calls++
		return 0, errTemporary
	})
	require.ErrorIs(t, err, errTemporary)
	assert.Equal(t, 2, calls)
	assert.Equal(t, resilience.StateOpen, policy.Breaker().State())

	err = policy.Run(ctx, "send", func() error { return nil })
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
}
