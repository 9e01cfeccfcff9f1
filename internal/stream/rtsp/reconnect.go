package rtsp

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// ReconnectConfig tunes exponential backoff for camera reconnection.
type ReconnectConfig struct {
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// DefaultReconnectConfig returns the standard schedule: five attempts, one
// second doubling up to a thirty second cap.
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:    5,
		RetryDelay:    1 * time.Second,
		MaxRetryDelay: 30 * time.Second,
	}
}

// ReconnectState tracks consecutive failures and the lifetime reconnect
// count.
type ReconnectState struct {
	CurrentRetries int
	Reconnects     *uint32
}

// ConnectFunc runs one connection attempt. A nil return means the connection
// was established and later ended gracefully.
type ConnectFunc func(ctx context.Context) error

// RunWithReconnect drives connectFn with exponential backoff between
// failures. It returns nil when connectFn succeeds, the context error on
// cancellation, or a terminal error once MaxRetries consecutive attempts
// fail.
func RunWithReconnect(
	ctx context.Context,
	connectFn ConnectFunc,
	cfg ReconnectConfig,
	state *ReconnectState,
) error {
	for {
		select {
		case <-ctx.Done():
			slog.Info("rtsp: context cancelled, stopping reconnection")
			return ctx.Err()
		default:
		}

		err := connectFn(ctx)
		if err == nil {
			state.CurrentRetries = 0
			slog.Info("rtsp: connection finished cleanly")
			return nil
		}

		slog.Error("rtsp: connection failed", "error", err)

		state.CurrentRetries++
		atomic.AddUint32(state.Reconnects, 1)

		if state.CurrentRetries > cfg.MaxRetries {
			return fmt.Errorf("rtsp: max retries exceeded (%d attempts)", cfg.MaxRetries)
		}

		delay := calculateBackoff(state.CurrentRetries, cfg)
		slog.Warn("rtsp: retrying connection",
			"attempt", state.CurrentRetries,
			"max_retries", cfg.MaxRetries,
			"delay", delay,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			slog.Info("rtsp: context cancelled during backoff")
			return ctx.Err()
		}
	}
}

// calculateBackoff doubles the base delay per attempt and caps it:
// 1s, 2s, 4s, 8s, 16s with the default config.
func calculateBackoff(attempt int, cfg ReconnectConfig) time.Duration {
	delay := cfg.RetryDelay * time.Duration(1<<uint(attempt-1))
	if delay > cfg.MaxRetryDelay {
		delay = cfg.MaxRetryDelay
	}
	return delay
}

// ResetReconnectState clears the consecutive failure counter after the
// pipeline reaches PLAYING.
func ResetReconnectState(state *ReconnectState) {
	state.CurrentRetries = 0
	slog.Debug("rtsp: reconnect state reset")
}
