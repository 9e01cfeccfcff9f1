package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

// FileConfig configures playback of a recorded video file.
type FileConfig struct {
	Path   string
	Width  int
	Height int
	FPS    float64
	Format vision.PixelFormat

	// BufferFrames is the outgoing channel capacity.
	BufferFrames int
}

// FileStream replays a recorded walkthrough as raw frames. ffmpeg decodes
// and scales the file into an rgb24/bgr24 pipe; a reader goroutine slices
// the pipe into frames and paces them at the configured rate. EOF closes
// the frame channel, which ends the run.
type FileStream struct {
	cfg    FileConfig
	source string

	mu        sync.Mutex
	isRunning bool
	startTime time.Time
	cancel    context.CancelFunc
	frames    chan Frame

	wg sync.WaitGroup

	framesEmitted atomic.Uint64
	framesDropped atomic.Uint64
	bytesRead     atomic.Uint64
	lastFrameAt   atomic.Int64
}

// probeInfo is the subset of ffprobe output we need.
type probeInfo struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
}

// NewFileStream validates the config and checks the file exists. The ffmpeg
// binary itself is not touched until Start.
func NewFileStream(cfg FileConfig) (*FileStream, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file: path is required")
	}
	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("file: %s is a directory", cfg.Path)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("file: invalid resolution %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FPS < 0.1 || cfg.FPS > 60 {
		return nil, fmt.Errorf("file: fps %.2f outside 0.1..60", cfg.FPS)
	}
	if cfg.BufferFrames <= 0 {
		cfg.BufferFrames = 30
	}

	return &FileStream{cfg: cfg, source: cfg.Path}, nil
}

// Name identifies the provider kind.
func (f *FileStream) Name() string { return "file" }

// Start probes the file, spawns ffmpeg and launches the reader goroutine.
func (f *FileStream) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.isRunning {
		return fmt.Errorf("file: already running")
	}

	srcW, srcH, srcFPS, err := probeFile(f.cfg.Path)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)

	pr, pw := io.Pipe()
	pixFmt := "rgb24"
	if f.cfg.Format == vision.FormatBGR {
		pixFmt = "bgr24"
	}
	cmd := ffmpeg.Input(f.cfg.Path).
		Output("pipe:1", ffmpeg.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": pixFmt,
			"s":       fmt.Sprintf("%dx%d", f.cfg.Width, f.cfg.Height),
			"r":       strconv.FormatFloat(f.cfg.FPS, 'f', -1, 64),
		}).
		WithOutput(pw).
		WithErrorOutput(io.Discard)
	cmd.Context = runCtx

	frames := make(chan Frame, f.cfg.BufferFrames)
	f.frames = frames
	f.cancel = cancel
	f.startTime = time.Now()
	f.isRunning = true
	f.framesEmitted.Store(0)
	f.framesDropped.Store(0)
	f.bytesRead.Store(0)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		err := cmd.Run()
		if err != nil && runCtx.Err() == nil {
			slog.Error("capture: ffmpeg exited", "path", f.cfg.Path, "error", err)
		}
		// Close produces EOF on the read side once buffered data drains.
		pw.Close()
	}()

	f.wg.Add(1)
	go f.readFrames(runCtx, pr, frames)

	slog.Info("capture: file playback started",
		"path", f.cfg.Path,
		"source_resolution", fmt.Sprintf("%dx%d", srcW, srcH),
		"source_fps", srcFPS,
		"output_resolution", fmt.Sprintf("%dx%d", f.cfg.Width, f.cfg.Height),
		"output_fps", f.cfg.FPS,
	)
	return nil
}

// readFrames slices the raw pipe into frames and forwards them paced at the
// target rate. Sole sender on frames; closes it on exit.
func (f *FileStream) readFrames(ctx context.Context, pr *io.PipeReader, frames chan<- Frame) {
	defer f.wg.Done()
	defer close(frames)
	defer pr.Close()

	frameSize := f.cfg.Width * f.cfg.Height * 3
	interval := time.Duration(float64(time.Second) / f.cfg.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seq uint64
	for {
		data := make([]byte, frameSize)
		if _, err := io.ReadFull(pr, data); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				slog.Info("capture: file playback finished",
					"path", f.cfg.Path,
					"frames", f.framesEmitted.Load(),
				)
			} else if ctx.Err() == nil {
				slog.Error("capture: file read failed", "path", f.cfg.Path, "error", err)
			}
			return
		}
		f.bytesRead.Add(uint64(frameSize))

		// The pipe applies backpressure to ffmpeg, so pacing here paces
		// the whole decode.
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		seq++
		frame := Frame{
			Seq:       seq,
			Timestamp: time.Now(),
			Width:     f.cfg.Width,
			Height:    f.cfg.Height,
			Data:      data,
			Format:    f.cfg.Format,
			Source:    f.source,
			TraceID:   uuid.New().String(),
		}
		select {
		case frames <- frame:
			f.framesEmitted.Add(1)
			f.lastFrameAt.Store(frame.Timestamp.UnixNano())
		default:
			f.framesDropped.Add(1)
		}
	}
}

// Frames returns the frame channel for the current run.
func (f *FileStream) Frames() <-chan Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

// Stop cancels playback and waits for ffmpeg and the reader to finish.
// Safe to call twice; the source can be started again afterwards.
func (f *FileStream) Stop() error {
	f.mu.Lock()
	if !f.isRunning {
		f.mu.Unlock()
		return nil
	}
	cancel := f.cancel
	f.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		slog.Warn("capture: file goroutines did not stop in time")
	}

	f.mu.Lock()
	f.isRunning = false
	f.cancel = nil
	f.mu.Unlock()

	slog.Info("capture: file playback stopped",
		"frames", f.framesEmitted.Load(),
		"dropped", f.framesDropped.Load(),
	)
	return nil
}

// Stats snapshots the counters.
func (f *FileStream) Stats() Stats {
	f.mu.Lock()
	running := f.isRunning
	started := f.startTime
	f.mu.Unlock()

	s := Stats{
		FramesProduced: f.framesEmitted.Load(),
		FramesDropped:  f.framesDropped.Load(),
		BytesRead:      f.bytesRead.Load(),
		FPSTarget:      f.cfg.FPS,
	}
	if ts := f.lastFrameAt.Load(); ts != 0 {
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

// probeFile returns the first video stream's dimensions and average rate.
func probeFile(path string) (width, height int, fps float64, err error) {
	probeStr, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("file: ffprobe failed: %w", err)
	}
	var info probeInfo
	if err := json.Unmarshal([]byte(probeStr), &info); err != nil {
		return 0, 0, 0, fmt.Errorf("file: parse probe output: %w", err)
	}
	for _, s := range info.Streams {
		if s.CodecType != "video" {
			continue
		}
		return s.Width, s.Height, parseRate(s.AvgFrameRate), nil
	}
	return 0, 0, 0, fmt.Errorf("file: no video stream in %s", path)
}

// parseRate parses ffprobe's num/den rational rate; 0 when unknown.
func parseRate(rate string) float64 {
	parts := strings.Split(rate, "/")
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
