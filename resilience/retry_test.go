package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/kbukum/multimongo/errors"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	var retries []int
	cfg := fastRetry(3)
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { retries = append(retries, attempt) }

	got, err := Retry(context.Background(), cfg, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("server selection error")
		}
		return "pong", nil
	})
	if err != nil || got != "pong" {
		t.Fatalf("Retry = %q, %v", got, err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("OnRetry attempts = %v", retries)
	}
}

func TestRetryReturnsLastError(t *testing.T) {
	calls := 0
	err := RetryFunc(context.Background(), fastRetry(4), func(context.Context) error {
		calls++
		return errors.New("down")
	})
	if err == nil || err.Error() != "down" {
		t.Fatalf("err = %v", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"invalid config", apperrors.InvalidConfig("uri", "bad")},
		{"cancelled", context.Canceled},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			_ = RetryFunc(context.Background(), fastRetry(5), func(context.Context) error {
				calls++
				return tc.err
			})
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
		})
	}
}

func TestRetryRetriesRetryableAppError(t *testing.T) {
	calls := 0
	_ = RetryFunc(context.Background(), fastRetry(2), func(context.Context) error {
		calls++
		return apperrors.ConnectionFailed("mongodb")
	})
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 5, InitialBackoff: time.Hour, MaxBackoff: time.Hour}
	cfg.OnRetry = func(int, error, time.Duration) { cancel() }

	err := RetryFunc(ctx, cfg, func(context.Context) error { return errors.New("x") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	calls := 0
	_ = RetryFunc(ctx, cfg, func(context.Context) error { calls++; return nil })
	if calls != 0 {
		t.Error("fn should not run on a cancelled context")
	}
}

func TestBackoff(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second, BackoffFactor: 2}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{5, time.Second},
	}
	for _, tc := range tests {
		if got := Backoff(tc.attempt, cfg); got != tc.want {
			t.Errorf("Backoff(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}

	cfg.Jitter = 0.5
	for i := 0; i < 20; i++ {
		got := Backoff(1, cfg)
		if got < 50*time.Millisecond || got > 150*time.Millisecond {
			t.Fatalf("jittered backoff %v out of range", got)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg RetryConfig
	cfg.ApplyDefaults()
	if cfg.MaxAttempts != 3 || cfg.InitialBackoff != 100*time.Millisecond || cfg.RetryIf == nil {
		t.Errorf("defaults = %+v", cfg)
	}
}
