package rtsp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// TestCalculateBackoff verifies the doubling schedule and its cap.
func TestCalculateBackoff(t *testing.T) {
	cfg := DefaultReconnectConfig()

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second, // capped, not 32
		30 * time.Second,
	}
	for i, w := range want {
		attempt := i + 1
		if got := calculateBackoff(attempt, cfg); got != w {
			t.Errorf("attempt %d: backoff = %v, want %v", attempt, got, w)
		}
	}
}

// TestRunWithReconnectSuccess verifies a clean connection returns nil and
// resets the consecutive failure counter.
func TestRunWithReconnectSuccess(t *testing.T) {
	var reconnects uint32
	state := &ReconnectState{CurrentRetries: 3, Reconnects: &reconnects}

	err := RunWithReconnect(context.Background(), func(ctx context.Context) error {
		return nil
	}, DefaultReconnectConfig(), state)

	if err != nil {
		t.Fatalf("RunWithReconnect failed: %v", err)
	}
	if state.CurrentRetries != 0 {
		t.Errorf("CurrentRetries = %d after success, want 0", state.CurrentRetries)
	}
	if reconnects != 0 {
		t.Errorf("reconnect count = %d, want 0", reconnects)
	}
}

// TestRunWithReconnectRecovers verifies failures before an eventual success
// are retried and counted.
func TestRunWithReconnectRecovers(t *testing.T) {
	cfg := ReconnectConfig{MaxRetries: 5, RetryDelay: time.Millisecond, MaxRetryDelay: 5 * time.Millisecond}
	var reconnects uint32
	state := &ReconnectState{Reconnects: &reconnects}

	attempts := 0
	err := RunWithReconnect(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, cfg, state)

	if err != nil {
		t.Fatalf("RunWithReconnect failed: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if reconnects != 2 {
		t.Errorf("reconnect count = %d, want 2", reconnects)
	}
}

// TestRunWithReconnectExhaustsRetries verifies a persistent failure becomes
// terminal after MaxRetries attempts.
func TestRunWithReconnectExhaustsRetries(t *testing.T) {
	cfg := ReconnectConfig{MaxRetries: 2, RetryDelay: time.Millisecond, MaxRetryDelay: 5 * time.Millisecond}
	var reconnects uint32
	state := &ReconnectState{Reconnects: &reconnects}

	attempts := 0
	err := RunWithReconnect(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("connection refused")
	}, cfg, state)

	if err == nil {
		t.Fatal("expected terminal error")
	}
	if !strings.Contains(err.Error(), "max retries") {
		t.Errorf("error %q should mention max retries", err)
	}
	if attempts != cfg.MaxRetries+1 {
		t.Errorf("attempts = %d, want %d", attempts, cfg.MaxRetries+1)
	}
}

// TestRunWithReconnectCancelled verifies cancellation during backoff returns
// the context error promptly.
func TestRunWithReconnectCancelled(t *testing.T) {
	cfg := ReconnectConfig{MaxRetries: 10, RetryDelay: time.Minute, MaxRetryDelay: time.Minute}
	var reconnects uint32
	state := &ReconnectState{Reconnects: &reconnects}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		done <- RunWithReconnect(ctx, func(ctx context.Context) error {
			return errors.New("connection refused")
		}, cfg, state)
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunWithReconnect did not honor cancellation")
	}
}

// TestResetReconnectState verifies the counter clears without touching the
// lifetime total.
func TestResetReconnectState(t *testing.T) {
	var reconnects uint32 = 7
	state := &ReconnectState{CurrentRetries: 4, Reconnects: &reconnects}

	ResetReconnectState(state)

	if state.CurrentRetries != 0 {
		t.Errorf("CurrentRetries = %d, want 0", state.CurrentRetries)
	}
	if reconnects != 7 {
		t.Errorf("lifetime reconnects changed to %d, want 7", reconnects)
	}
}
