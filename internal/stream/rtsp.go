package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/stream/rtsp"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

// RTSPConfig configures the camera source.
type RTSPConfig struct {
	// URL is the rtsp:// camera address.
	URL string

	// Width, Height and FPS define the negotiated output; the camera
	// stream is scaled and rate-limited to match.
	Width  int
	Height int
	FPS    float64

	// Format is the delivered channel order.
	Format vision.PixelFormat

	// Decoder is auto, vaapi or software.
	Decoder string

	// BufferFrames is the outgoing channel capacity.
	BufferFrames int

	// LatencyMS is the jitterbuffer length; 0 uses the default.
	LatencyMS int

	// Reconnect overrides the backoff schedule; zero value uses defaults.
	Reconnect rtsp.ReconnectConfig
}

// RTSPStream captures frames from an RTSP camera through GStreamer with
// automatic reconnection. Frames flow appsink -> raw channel -> conversion
// goroutine -> Frames(); every handoff drops rather than blocks.
type RTSPStream struct {
	cfg RTSPConfig

	mu        sync.Mutex
	isRunning bool
	startTime time.Time
	elems     *rtsp.PipelineElements
	frames    chan Frame
	cancel    context.CancelFunc
	targetFPS float64

	wg sync.WaitGroup

	frameCounter  uint64
	bytesRead     uint64
	framesDropped uint64
	reconnects    uint32
	errNetwork    uint64
	errCodec      uint64
	errAuth       uint64
	errUnknown    uint64
	lastFrameAt   atomic.Int64

	reconnectState rtsp.ReconnectState
}

var gstInitOnce sync.Once

// checkGStreamerAvailable initializes GStreamer once and verifies element
// creation works before any pipeline is attempted.
func checkGStreamerAvailable() error {
	gstInitOnce.Do(func() { gst.Init(nil) })
	if _, err := gst.NewElement("fakesrc"); err != nil {
		return fmt.Errorf("gstreamer not functional: %w", err)
	}
	return nil
}

// NewRTSPStream validates the config and the GStreamer environment and
// returns a stopped camera source.
func NewRTSPStream(cfg RTSPConfig) (*RTSPStream, error) {
	if !strings.HasPrefix(cfg.URL, "rtsp://") {
		return nil, fmt.Errorf("rtsp: url %q must start with rtsp://", cfg.URL)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("rtsp: invalid resolution %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FPS < 0.1 || cfg.FPS > 60 {
		return nil, fmt.Errorf("rtsp: fps %.2f outside 0.1..60", cfg.FPS)
	}
	if cfg.BufferFrames <= 0 {
		cfg.BufferFrames = 30
	}
	if cfg.Decoder == "" {
		cfg.Decoder = "auto"
	}
	if cfg.Reconnect.MaxRetries == 0 {
		cfg.Reconnect = rtsp.DefaultReconnectConfig()
	}
	if err := checkGStreamerAvailable(); err != nil {
		return nil, err
	}

	r := &RTSPStream{cfg: cfg, targetFPS: cfg.FPS}
	r.reconnectState.Reconnects = &r.reconnects
	return r, nil
}

// Name identifies the provider kind.
func (r *RTSPStream) Name() string { return "rtsp" }

// Start builds the pipeline, brings it to PLAYING and launches the
// conversion and monitoring goroutines. The context cancels the whole run.
func (r *RTSPStream) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isRunning {
		return fmt.Errorf("rtsp: already running")
	}

	runCtx, cancel := context.WithCancel(ctx)

	frames := make(chan Frame, r.cfg.BufferFrames)
	rawCh := make(chan rtsp.Frame, 10)

	if err := r.buildPipelineLocked(rawCh); err != nil {
		cancel()
		return err
	}

	r.frames = frames
	r.cancel = cancel
	r.startTime = time.Now()
	r.isRunning = true
	atomic.StoreUint64(&r.frameCounter, 0)
	atomic.StoreUint64(&r.bytesRead, 0)
	atomic.StoreUint64(&r.framesDropped, 0)

	// The conversion goroutine is the only sender on frames and closes it
	// on exit, so consumers always see exactly one close.
	r.wg.Add(1)
	go r.convertFrames(runCtx, rawCh, frames)

	r.wg.Add(1)
	go r.runPipeline(runCtx, rawCh)

	slog.Info("capture: rtsp started",
		"url", r.cfg.URL,
		"resolution", fmt.Sprintf("%dx%d", r.cfg.Width, r.cfg.Height),
		"fps", r.targetFPS,
		"decoder", r.cfg.Decoder,
	)
	return nil
}

// buildPipelineLocked creates a pipeline, wires callbacks and starts
// playback. Callers hold r.mu.
func (r *RTSPStream) buildPipelineLocked(rawCh chan rtsp.Frame) error {
	elems, err := rtsp.CreatePipeline(rtsp.PipelineConfig{
		URL:       r.cfg.URL,
		Width:     r.cfg.Width,
		Height:    r.cfg.Height,
		FPS:       r.targetFPS,
		Format:    r.cfg.Format.String(),
		Decoder:   r.cfg.Decoder,
		LatencyMS: r.cfg.LatencyMS,
	})
	if err != nil {
		return fmt.Errorf("rtsp: failed to create pipeline: %w", err)
	}

	cbCtx := &rtsp.CallbackContext{
		FrameChan:     rawCh,
		FrameCounter:  &r.frameCounter,
		BytesRead:     &r.bytesRead,
		FramesDropped: &r.framesDropped,
		Width:         r.cfg.Width,
		Height:        r.cfg.Height,
	}
	elems.Sink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			return rtsp.OnNewSample(sink, cbCtx)
		},
	})

	depay := elems.Depay
	elems.Source.Connect("pad-added", func(src *gst.Element, pad *gst.Pad) {
		rtsp.OnPadAdded(src, pad, depay)
	})

	if err := elems.Pipeline.SetState(gst.StatePlaying); err != nil {
		rtsp.DestroyPipeline(elems)
		return fmt.Errorf("rtsp: failed to start pipeline: %w", err)
	}

	r.elems = elems
	return nil
}

// convertFrames turns raw callback frames into capture frames and forwards
// them without blocking.
func (r *RTSPStream) convertFrames(ctx context.Context, rawCh <-chan rtsp.Frame, frames chan<- Frame) {
	defer r.wg.Done()
	defer close(frames)

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-rawCh:
			if !ok {
				return
			}
			r.lastFrameAt.Store(raw.Timestamp.UnixNano())
			frame := Frame{
				Seq:       raw.Seq,
				Timestamp: raw.Timestamp,
				Width:     raw.Width,
				Height:    raw.Height,
				Data:      raw.Data,
				Format:    r.cfg.Format,
				Source:    r.cfg.URL,
				TraceID:   raw.TraceID,
			}
			select {
			case frames <- frame:
			default:
				atomic.AddUint64(&r.framesDropped, 1)
			}
		}
	}
}

// runPipeline monitors the bus and reconnects with backoff until the run
// ends. A terminal failure cancels the run so consumers see the frames
// channel close.
func (r *RTSPStream) runPipeline(ctx context.Context, rawCh chan rtsp.Frame) {
	defer r.wg.Done()

	err := rtsp.RunWithReconnect(ctx, func(ctx context.Context) error {
		return r.connectAndMonitor(ctx, rawCh)
	}, r.cfg.Reconnect, &r.reconnectState)

	if err != nil && ctx.Err() == nil {
		slog.Error("capture: rtsp stream terminated", "url", r.cfg.URL, "error", err)
	}

	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// connectAndMonitor ensures a live pipeline exists, then blocks on its bus
// until failure or shutdown. The pipeline is torn down before returning so
// the next attempt starts clean.
func (r *RTSPStream) connectAndMonitor(ctx context.Context, rawCh chan rtsp.Frame) error {
	r.mu.Lock()
	if r.elems == nil {
		if err := r.buildPipelineLocked(rawCh); err != nil {
			r.mu.Unlock()
			return err
		}
	}
	elems := r.elems
	r.mu.Unlock()

	metrics := &rtsp.MonitorMetrics{
		URL:        r.cfg.URL,
		Resolution: fmt.Sprintf("%dx%d", r.cfg.Width, r.cfg.Height),
		FrameCount: &r.frameCounter,
		Reconnects: &r.reconnects,
		StartedAt:  r.startTime,
	}
	counters := &rtsp.ErrorCounters{
		Network: &r.errNetwork,
		Codec:   &r.errCodec,
		Auth:    &r.errAuth,
		Unknown: &r.errUnknown,
	}

	err := rtsp.MonitorPipelineBus(ctx, elems.Pipeline, counters, &r.reconnectState, metrics)

	r.mu.Lock()
	if r.elems != nil {
		rtsp.DestroyPipeline(r.elems)
		r.elems = nil
	}
	r.mu.Unlock()
	return err
}

// Frames returns the frame channel for the current run.
func (r *RTSPStream) Frames() <-chan Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Stop cancels the run, waits for the goroutines and tears the pipeline
// down. Safe to call twice; the source can be started again afterwards.
func (r *RTSPStream) Stop() error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	cancel := r.cancel
	r.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		slog.Warn("capture: rtsp goroutines did not stop in time")
	}

	r.mu.Lock()
	if r.elems != nil {
		rtsp.DestroyPipeline(r.elems)
		r.elems = nil
	}
	r.isRunning = false
	r.cancel = nil
	r.mu.Unlock()

	stats := r.Stats()
	slog.Info("capture: rtsp stopped",
		"frames", stats.FramesProduced,
		"dropped", stats.FramesDropped,
		"reconnects", stats.Reconnects,
	)
	return nil
}

// Stats snapshots the counters.
func (r *RTSPStream) Stats() Stats {
	r.mu.Lock()
	running := r.isRunning
	started := r.startTime
	target := r.targetFPS
	r.mu.Unlock()

	s := Stats{
		FramesProduced: atomic.LoadUint64(&r.frameCounter),
		FramesDropped:  atomic.LoadUint64(&r.framesDropped),
		BytesRead:      atomic.LoadUint64(&r.bytesRead),
		Reconnects:     atomic.LoadUint32(&r.reconnects),
		FPSTarget:      target,
	}
	if ts := r.lastFrameAt.Load(); ts != 0 {
		s.LastFrameAt = time.Unix(0, ts)
	}
	if running {
		s.Uptime = time.Since(started)
		if secs := s.Uptime.Seconds(); secs > 0 {
			s.FPSReal = float64(s.FramesProduced) / secs
		}
	}
	if total := s.FramesProduced + s.FramesDropped; total > 0 {
		s.DropRate = float64(s.FramesDropped) / float64(total) * 100
	}
	return s
}

// SetTargetFPS retunes the live pipeline caps. On failure or timeout the old
// rate is restored and an error returned. When no pipeline is up the new
// rate simply applies to the next build.
func (r *RTSPStream) SetTargetFPS(fps float64) error {
	if fps < 0.1 || fps > 60 {
		return fmt.Errorf("rtsp: fps %.2f outside 0.1..60", fps)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.elems == nil {
		r.targetFPS = fps
		return nil
	}

	old := r.targetFPS
	pcfg := rtsp.PipelineConfig{
		Width:  r.cfg.Width,
		Height: r.cfg.Height,
		Format: r.cfg.Format.String(),
	}

	done := make(chan error, 1)
	elems := r.elems
	go func() { done <- rtsp.UpdateFramerateCaps(elems, pcfg, fps) }()

	select {
	case err := <-done:
		if err != nil {
			if rbErr := rtsp.UpdateFramerateCaps(elems, pcfg, old); rbErr != nil {
				slog.Error("capture: fps rollback failed", "error", rbErr)
			}
			return fmt.Errorf("rtsp: fps update failed, kept %.2f: %w", old, err)
		}
	case <-time.After(5 * time.Second):
		go func() { <-done }()
		if rbErr := rtsp.UpdateFramerateCaps(elems, pcfg, old); rbErr != nil {
			slog.Error("capture: fps rollback failed", "error", rbErr)
		}
		return fmt.Errorf("rtsp: fps update timed out, kept %.2f", old)
	}

	r.targetFPS = fps
	slog.Info("capture: target fps updated", "fps", fps)
	return nil
}
