package stream

import "context"

// Provider is a frame source with a managed lifecycle.
//
// Implementations must guarantee:
//   - Frames() never blocks producers: when the consumer lags, frames are
//     dropped and counted, never queued beyond the channel capacity.
//   - The frames channel is closed exactly once, after Stop or a terminal
//     source failure. A closed channel is the consumer's only signal that
//     no more frames will come.
//   - Start after Stop begins a fresh run with a new channel.
//   - Stats is safe to call from any goroutine at any time.
type Provider interface {
	// Start begins capture. It fails fast on configuration or environment
	// problems and returns once frames are flowing or scheduled to flow.
	// The context cancels the whole run.
	Start(ctx context.Context) error

	// Frames returns the channel of captured frames for the current run.
	Frames() <-chan Frame

	// Stop ends the run, waits briefly for internal goroutines and closes
	// the frames channel. Stopping a stopped provider is a no-op.
	Stop() error

	// Stats returns a snapshot of the run's counters.
	Stats() Stats

	// Name identifies the provider kind in logs: rtsp, file or mock.
	Name() string
}
