package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
)

// ExponentialBackoff doubles the delay after every recoverable failure, up
// to maxDelay.
type ExponentialBackoff struct {
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	recoverable  func(error) bool
}

// NewExponentialBackoff creates a strategy that makes at most maxRetries+1
// attempts.
func NewExponentialBackoff(maxRetries int, initialDelay, maxDelay time.Duration) *ExponentialBackoff {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if maxDelay < initialDelay {
		maxDelay = initialDelay
	}
	return &ExponentialBackoff{
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		recoverable:  IsRecoverable,
	}
}

// WithClassifier replaces the recoverable-error test.
func (s *ExponentialBackoff) WithClassifier(fn func(error) bool) *ExponentialBackoff {
	s.recoverable = fn
	return s
}

// Execute runs op until it succeeds, fails with a non-recoverable error,
// exhausts its attempts or ctx is done.
func (s *ExponentialBackoff) Execute(ctx context.Context, op Operation) error {
	var lastErr error
	delay := s.initialDelay

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 0 {
				slog.Info("Operation succeeded after retry", "attempt", attempt+1)
			}
			return nil
		}
		lastErr = err

		if !s.recoverable(err) {
			slog.Error("Non-recoverable error, failing immediately",
				"error", err,
				"attempt", attempt+1)
			return err
		}
		if attempt >= s.maxRetries {
			break
		}

		slog.Warn("Operation failed, retrying with exponential backoff",
			"attempt", attempt+1,
			"max_attempts", s.maxRetries+1,
			"retry_in", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-timer.C:
		}
		delay *= 2
		if delay > s.maxDelay {
			delay = s.maxDelay
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", s.maxRetries+1, lastErr)
}

func (s *ExponentialBackoff) Name() string {
	return "ExponentialBackoff"
}

var recoverablePatterns = []string{
	"connection reset by peer",
	"connection refused",
	"timeout",
	"temporary failure",
	"network is unreachable",
	"broken pipe",
	"eof",
	"no such host",
	"connection timed out",
	"dial tcp",
	"too many clients",
	"the database system is starting up",
}

// IsRecoverable reports whether err looks like a transient network or
// database availability problem.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range recoverablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
