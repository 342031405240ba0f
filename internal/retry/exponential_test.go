package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("first attempt succeeds", func(t *testing.T) {
		s := NewExponentialBackoff(3, time.Millisecond, 10*time.Millisecond)
		attempts := 0
		err := s.Execute(ctx, func(context.Context) error {
			attempts++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("succeeds after recoverable failures", func(t *testing.T) {
		s := NewExponentialBackoff(5, time.Millisecond, 10*time.Millisecond)
		attempts := 0
		err := s.Execute(ctx, func(context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("connection reset by peer")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("non-recoverable fails immediately", func(t *testing.T) {
		s := NewExponentialBackoff(5, time.Millisecond, 10*time.Millisecond)
		attempts := 0
		boom := errors.New("duplicate key value")
		err := s.Execute(ctx, func(context.Context) error {
			attempts++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, attempts)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		s := NewExponentialBackoff(3, time.Millisecond, 2*time.Millisecond)
		attempts := 0
		err := s.Execute(ctx, func(context.Context) error {
			attempts++
			return errors.New("connection refused")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 4 attempts")
		assert.Equal(t, 4, attempts)
	})

	t.Run("custom classifier", func(t *testing.T) {
		s := NewExponentialBackoff(2, time.Millisecond, time.Millisecond).
			WithClassifier(func(error) bool { return true })
		attempts := 0
		_ = s.Execute(ctx, func(context.Context) error {
			attempts++
			return errors.New("anything")
		})
		assert.Equal(t, 3, attempts)
	})
}

func TestExponentialBackoffContextCancellation(t *testing.T) {
	s := NewExponentialBackoff(10, time.Second, time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := s.Execute(ctx, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("i/o timeout")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestNewStrategy(t *testing.T) {
	assert.Equal(t, "NoRetry", NewStrategy(Config{}).Name())

	cfg := DefaultConfig()
	assert.Equal(t, "ExponentialBackoff", NewStrategy(cfg).Name())

	calls := 0
	err := NoRetry{}.Execute(context.Background(), func(context.Context) error {
		calls++
		return errors.New("timeout")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"timeout", errors.New("i/o timeout"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"postgres starting", errors.New("FATAL: the database system is starting up"), true},
		{"cancelled", context.Canceled, false},
		{"invalid data", errors.New("invalid data format"), false},
		{"permission denied", errors.New("permission denied"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRecoverable(tt.err))
		})
	}
}
