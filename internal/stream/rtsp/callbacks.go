package rtsp

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// Frame is the raw decoded frame handed out of the GStreamer callback. The
// capture layer wraps it with pixel format and source metadata; keeping a
// separate type here avoids an import cycle with that layer.
type Frame struct {
	Seq       uint64
	Timestamp time.Time
	Width     int
	Height    int
	Data      []byte
	TraceID   string
}

// CallbackContext carries the state the appsink callback needs: the handoff
// channel and the atomic counters it updates.
type CallbackContext struct {
	FrameChan     chan<- Frame
	FrameCounter  *uint64
	BytesRead     *uint64
	FramesDropped *uint64
	Width         int
	Height        int
}

// OnNewSample pulls one decoded sample from the appsink, copies the pixel
// data (GStreamer reuses the buffer) and hands it off without blocking. When
// the channel is full the frame is dropped and counted; the pipeline is never
// stalled to wait for a slow consumer.
//
// A corrupt or empty sample is skipped rather than treated as fatal; one bad
// frame must not take the stream down.
func OnNewSample(sink *app.Sink, ctx *CallbackContext) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		slog.Warn("rtsp: failed to pull sample from appsink, skipping frame")
		return gst.FlowOK
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		slog.Warn("rtsp: failed to get buffer from sample, skipping frame")
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 {
		buffer.Unmap()
		slog.Warn("rtsp: empty buffer received")
		return gst.FlowOK
	}

	frameData := make([]byte, len(data))
	copy(frameData, data)
	buffer.Unmap()

	seq := atomic.AddUint64(ctx.FrameCounter, 1)
	atomic.AddUint64(ctx.BytesRead, uint64(len(frameData)))

	frame := Frame{
		Seq:       seq,
		Timestamp: time.Now(),
		Width:     ctx.Width,
		Height:    ctx.Height,
		Data:      frameData,
		TraceID:   uuid.New().String(),
	}

	select {
	case ctx.FrameChan <- frame:
	default:
		atomic.AddUint64(ctx.FramesDropped, 1)
		slog.Debug("rtsp: dropping frame, channel full",
			"seq", frame.Seq,
			"trace_id", frame.TraceID,
		)
	}

	return gst.FlowOK
}

// OnPadAdded links the dynamic rtspsrc output pad to the depayloader once the
// stream is negotiated. rtspsrc pads do not exist at pipeline construction
// time.
func OnPadAdded(srcElement *gst.Element, srcPad *gst.Pad, sinkElement *gst.Element) {
	slog.Debug("rtsp: pad-added signal received", "pad", srcPad.GetName())

	sinkPad := sinkElement.GetStaticPad("sink")
	if sinkPad == nil {
		slog.Error("rtsp: failed to get sink pad from depayloader")
		return
	}

	if ret := srcPad.Link(sinkPad); ret != gst.PadLinkOK {
		slog.Error("rtsp: failed to link pads",
			"src_pad", srcPad.GetName(),
			"sink_pad", sinkPad.GetName(),
			"ret", ret,
		)
		return
	}

	slog.Debug("rtsp: pads linked", "src_pad", srcPad.GetName(), "sink_pad", sinkPad.GetName())
}
