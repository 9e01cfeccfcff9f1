// Package stream provides the capture sources that feed frames into the
// repainting session: an RTSP camera via GStreamer, a video file via ffmpeg,
// and a synthetic generator for development and tests.
//
// All sources share one contract: frames are delivered on a bounded channel
// and dropped when the consumer lags. Latency beats completeness; a preview
// that shows the newest frame late is worse than one that skips frames.
package stream

import (
	"fmt"
	"time"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

// Frame is one captured frame with its provenance.
type Frame struct {
	// Seq increments per frame within one provider run, starting at 1.
	// Gaps in consumed sequence numbers mean frames were dropped.
	Seq uint64

	// Timestamp is the local capture time.
	Timestamp time.Time

	// Width and Height are the pixel dimensions.
	Width  int
	Height int

	// Data is the packed pixel buffer, Width*Height*3 bytes, never shared
	// between frames.
	Data []byte

	// Format is the channel order of Data.
	Format vision.PixelFormat

	// Source names the producing stream for logs and events.
	Source string

	// TraceID correlates this frame across processing, events and
	// snapshots.
	TraceID string
}

// ToVision wraps the pixel buffer as a vision frame without copying.
func (f *Frame) ToVision() (*vision.Frame, error) {
	vf, err := vision.FrameFromRaw(f.Data, f.Width, f.Height, f.Format)
	if err != nil {
		return nil, fmt.Errorf("frame %d from %s: %w", f.Seq, f.Source, err)
	}
	return vf, nil
}

// Stats is a point-in-time snapshot of a provider's counters.
type Stats struct {
	// FramesProduced counts frames emitted on the channel.
	FramesProduced uint64

	// FramesDropped counts frames discarded because the consumer lagged.
	FramesDropped uint64

	// BytesRead counts raw pixel bytes pulled from the source.
	BytesRead uint64

	// Reconnects counts connection attempts after failures.
	Reconnects uint32

	// FPSTarget is the configured rate; FPSReal the measured one.
	FPSTarget float64
	FPSReal   float64

	// DropRate is dropped/(produced+dropped) as a percentage.
	DropRate float64

	// Uptime is the time since Start; zero when stopped.
	Uptime time.Duration

	// LastFrameAt is the capture time of the newest frame, zero before the
	// first one.
	LastFrameAt time.Time
}
