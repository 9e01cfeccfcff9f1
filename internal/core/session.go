// Package core wires capture, vision, sinks and control surfaces into one
// running session. The vision pipeline itself stays immutable and pure; all
// mutable lifecycle state lives here.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/config"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/control"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/emitter"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/server"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/sink"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/stream"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

const warmupDuration = 5 * time.Second

// Session is the service orchestrator. It owns the capture provider, the
// sink, the control surfaces and the frame loop, and parameterizes the
// immutable vision pipeline with the selected color state.
type Session struct {
	cfg     *config.Config
	version string

	provider stream.Provider
	pipeline atomic.Pointer[vision.Pipeline]
	state    *vision.State
	latest   *stream.Latest
	saver    *sink.Saver      // nil when output is disabled
	httpSrv  *server.Server   // nil when the HTTP server is disabled
	emitter  *emitter.Emitter // nil when MQTT is disabled
	control  *control.Handler // nil when MQTT is disabled

	started   time.Time
	mu        sync.RWMutex
	wg        sync.WaitGroup
	isRunning bool
	cancelRun context.CancelFunc

	framesConsumed  atomic.Uint64
	framesProcessed atomic.Uint64
	processErrors   atomic.Uint64
	firstFrame      atomic.Bool
	coverageBits    atomic.Uint64

	lastMu  sync.Mutex
	lastRec *sink.Record
}

// New builds a session from a validated config. Construction fails fast on
// anything that cannot work: an unreachable capture setup, a bad output
// directory, invalid vision parameters.
func New(cfg *config.Config, version string) (*Session, error) {
	format := cfg.Capture.PixelFormat()

	pipeline, err := vision.NewPipeline(cfg.Vision.PipelineConfig(format))
	if err != nil {
		return nil, fmt.Errorf("failed to build vision pipeline: %w", err)
	}

	state := vision.NewState(format)
	if err := state.SetHex(cfg.Vision.InitialColor); err != nil {
		return nil, fmt.Errorf("initial color: %w", err)
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture source: %w", err)
	}

	s := &Session{
		cfg:      cfg,
		version:  version,
		provider: provider,
		state:    state,
		latest:   stream.NewLatest(),
	}
	s.pipeline.Store(pipeline)

	if cfg.Output.Enabled {
		saver, err := sink.NewSaver(cfg.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to create output sink: %w", err)
		}
		s.saver = saver
	}

	if cfg.MQTT.Enabled {
		s.emitter = emitter.New(cfg)
	}

	if cfg.Server.Enabled {
		s.httpSrv = server.New(cfg.Server.Listen, version, server.Callbacks{
			SetColor:     s.setColor,
			CurrentColor: s.state.Hex,
			Alpha:        s.alpha,
			Status:       s.buildStatus,
		})
	}

	slog.Info("session created",
		"instance", cfg.Instance.ID,
		"room", cfg.Instance.Room,
		"source", provider.Name(),
		"resolution", fmt.Sprintf("%dx%d", cfg.Capture.Width, cfg.Capture.Height),
		"initial_color", state.Hex(),
	)

	return s, nil
}

// buildProvider selects the capture source from config.
func buildProvider(cfg *config.Config) (stream.Provider, error) {
	c := cfg.Capture
	format := c.PixelFormat()

	switch c.Source {
	case "rtsp":
		return stream.NewRTSPStream(stream.RTSPConfig{
			URL:          c.URL,
			Width:        c.Width,
			Height:       c.Height,
			FPS:          c.FPS,
			Format:       format,
			Decoder:      c.Decoder,
			BufferFrames: c.BufferFrames,
		})
	case "file":
		return stream.NewFileStream(stream.FileConfig{
			Path:         c.Path,
			Width:        c.Width,
			Height:       c.Height,
			FPS:          c.FPS,
			Format:       format,
			BufferFrames: c.BufferFrames,
		})
	case "mock":
		return stream.NewMockStream(c.Width, c.Height, c.FPS, format)
	default:
		return nil, fmt.Errorf("unknown capture source %q", c.Source)
	}
}

// Run starts every component and blocks until the context is cancelled or
// the capture source ends. Partial startup failures return immediately;
// Shutdown cleans up whatever did start.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("session is already running")
	}
	s.isRunning = true
	s.started = time.Now()
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.cancelRun = cancel
	s.mu.Unlock()

	slog.Info("session starting", "instance", s.cfg.Instance.ID, "source", s.provider.Name())

	if err := s.provider.Start(ctx); err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}

	// Measure the real delivery rate before processing starts. A failed
	// warm-up is informational, never fatal.
	if s.cfg.Capture.Warmup {
		stats, err := stream.Warmup(ctx, s.provider.Frames(), warmupDuration)
		if err != nil {
			slog.Warn("capture warm-up failed, continuing", "error", err)
		} else if !stats.Stable {
			slog.Warn("capture rate is unstable",
				"fps_mean", fmt.Sprintf("%.2f", stats.FPSMean),
				"fps_stddev", fmt.Sprintf("%.2f", stats.FPSStdDev),
			)
		}
	}

	if s.emitter != nil {
		if err := s.emitter.Connect(); err != nil {
			return fmt.Errorf("failed to connect mqtt: %w", err)
		}

		s.control = control.NewHandler(s.cfg, s.emitter.Client, s.controlCallbacks())
		if err := s.control.Start(ctx); err != nil {
			return fmt.Errorf("failed to start control plane: %w", err)
		}

		s.emitter.StartStatsLoop(ctx, s.statusMap)
	}

	if s.httpSrv != nil {
		if err := s.httpSrv.Start(); err != nil {
			return fmt.Errorf("failed to start http server: %w", err)
		}
	}

	s.wg.Add(2)
	go s.pumpFrames(ctx)
	go s.processFrames()

	slog.Info("session running",
		"http", s.cfg.Server.Enabled,
		"mqtt", s.cfg.MQTT.Enabled,
		"output", s.cfg.Output.Enabled,
	)

	<-ctx.Done()

	slog.Info("session run loop exiting")
	return nil
}

// Shutdown tears components down in dependency order: capture first so the
// frame loop drains, then the control surfaces, then the broker connection.
func (s *Session) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.mu.Unlock()

	slog.Info("shutting down session")

	if err := s.provider.Stop(); err != nil {
		slog.Error("failed to stop capture", "error", err)
	}

	if s.control != nil {
		if err := s.control.Stop(); err != nil {
			slog.Error("failed to stop control handler", "error", err)
		}
	}

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			slog.Error("failed to stop http server", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("shutdown timed out waiting for frame loop")
	}

	if s.emitter != nil {
		if err := s.emitter.Disconnect(); err != nil {
			slog.Error("failed to disconnect mqtt", "error", err)
		}
	}

	s.mu.Lock()
	uptime := time.Since(s.started)
	s.isRunning = false
	s.mu.Unlock()

	slog.Info("session shutdown complete", "uptime", uptime.Round(time.Millisecond))
	return nil
}
