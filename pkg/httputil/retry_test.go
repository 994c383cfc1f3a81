package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryStopsAfterAttempts(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		return &RetryableError{Err: errors.New("boom")}
	})

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if err == nil || err.Error() != "boom" {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	attempts := 0
	_ = Retry(context.Background(), 0, time.Millisecond, func() error {
		attempts++
		return &RetryableError{Err: errors.New("boom")}
	})

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 5, time.Hour, func() error {
		return &RetryableError{Err: errors.New("boom")}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryUnwrap(t *testing.T) {
	inner := errors.New("inner")
	var re *RetryableError
	err := error(&RetryableError{Err: inner})

	if !errors.As(err, &re) {
		t.Fatal("errors.As should match RetryableError")
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is should see through RetryableError")
	}
}
