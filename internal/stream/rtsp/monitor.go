package rtsp

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
)

// ErrorCounters aggregates pipeline failures by category.
type ErrorCounters struct {
	Network *uint64
	Codec   *uint64
	Auth    *uint64
	Unknown *uint64
}

// MonitorMetrics carries identifying info and counters for bus log lines.
type MonitorMetrics struct {
	URL        string
	Resolution string
	FrameCount *uint64
	Reconnects *uint32
	StartedAt  time.Time
}

// MonitorPipelineBus polls the pipeline bus until the stream errors out or
// the context ends. EOS and pipeline errors return as errors so the caller's
// reconnect loop takes over; a cancelled context returns nil for graceful
// shutdown. Reaching PLAYING resets the reconnect state.
func MonitorPipelineBus(
	ctx context.Context,
	pipeline *gst.Pipeline,
	counters *ErrorCounters,
	reconnectState *ReconnectState,
	metrics *MonitorMetrics,
) error {
	if pipeline == nil {
		return fmt.Errorf("pipeline not initialized")
	}

	bus := pipeline.GetPipelineBus()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("rtsp: context cancelled, stopping pipeline monitor")
			return nil

		default:
			// Short poll keeps shutdown responsive.
			msg := bus.TimedPop(50 * time.Millisecond)
			if msg == nil {
				continue
			}

			switch msg.Type() {
			case gst.MessageEOS:
				slog.Info("rtsp: end of stream received",
					"url", metrics.URL,
					"uptime", time.Since(metrics.StartedAt),
					"frames", atomic.LoadUint64(metrics.FrameCount),
				)
				return fmt.Errorf("end of stream")

			case gst.MessageError:
				gerr := msg.ParseError()
				category := ClassifyGStreamerError(gerr)

				switch category {
				case ErrCategoryNetwork:
					atomic.AddUint64(counters.Network, 1)
				case ErrCategoryCodec:
					atomic.AddUint64(counters.Codec, 1)
				case ErrCategoryAuth:
					atomic.AddUint64(counters.Auth, 1)
				default:
					atomic.AddUint64(counters.Unknown, 1)
				}

				slog.Error("rtsp: pipeline error",
					"error", gerr.Error(),
					"debug", gerr.DebugString(),
					"category", category.String(),
					"url", metrics.URL,
					"resolution", metrics.Resolution,
					"uptime", time.Since(metrics.StartedAt),
					"frames", atomic.LoadUint64(metrics.FrameCount),
					"reconnects", atomic.LoadUint32(reconnectState.Reconnects),
				)
				return fmt.Errorf("pipeline error [%s]: %s", category.String(), gerr.Error())

			case gst.MessageStateChanged:
				if msg.Source() == pipeline.GetName() {
					oldState, newState := msg.ParseStateChanged()
					slog.Debug("rtsp: pipeline state changed", "from", oldState, "to", newState)
					if newState == gst.StatePlaying {
						ResetReconnectState(reconnectState)
						slog.Info("rtsp: pipeline playing, reconnect state reset")
					}
				}
			}
		}
	}
}
