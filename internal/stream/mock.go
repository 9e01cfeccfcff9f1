package stream

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

// MockStream generates a synthetic room scene at a fixed rate: a bright wall
// with slowly wobbling exposure, a dark furniture block and a picture frame.
// The scene exercises the full segmentation path without any camera.
type MockStream struct {
	width  int
	height int
	fps    float64
	format vision.PixelFormat
	source string

	frames chan Frame
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu        sync.Mutex
	isRunning bool
	startTime time.Time

	framesEmitted atomic.Uint64
	framesDropped atomic.Uint64
	bytesRead     atomic.Uint64
	lastFrameAt   atomic.Int64
}

// NewMockStream validates the dimensions and rate and returns a stopped
// mock source.
func NewMockStream(width, height int, fps float64, format vision.PixelFormat) (*MockStream, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("mock: invalid resolution %dx%d", width, height)
	}
	if fps < 0.1 || fps > 60 {
		return nil, fmt.Errorf("mock: fps %.2f outside 0.1..60", fps)
	}
	return &MockStream{
		width:  width,
		height: height,
		fps:    fps,
		format: format,
		source: fmt.Sprintf("mock-%dx%d", width, height),
	}, nil
}

// Name identifies the provider kind.
func (m *MockStream) Name() string { return "mock" }

// Start begins generating frames until the context ends or Stop is called.
func (m *MockStream) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isRunning {
		return fmt.Errorf("mock: already running")
	}

	m.frames = make(chan Frame, 10)
	m.stopCh = make(chan struct{})
	m.isRunning = true
	m.startTime = time.Now()
	m.framesEmitted.Store(0)
	m.framesDropped.Store(0)
	m.bytesRead.Store(0)

	m.wg.Add(1)
	go m.generateFrames(ctx)

	slog.Info("capture: mock started",
		"resolution", fmt.Sprintf("%dx%d", m.width, m.height),
		"fps", m.fps,
		"format", m.format.String(),
	)
	return nil
}

// Frames returns the frame channel for the current run.
func (m *MockStream) Frames() <-chan Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// Stop ends generation and closes the frames channel. Safe to call twice.
func (m *MockStream) Stop() error {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return nil
	}
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	close(m.frames)
	m.isRunning = false
	m.mu.Unlock()

	slog.Info("capture: mock stopped",
		"frames", m.framesEmitted.Load(),
		"dropped", m.framesDropped.Load(),
	)
	return nil
}

// Stats snapshots the counters.
func (m *MockStream) Stats() Stats {
	m.mu.Lock()
	running := m.isRunning
	started := m.startTime
	m.mu.Unlock()

	s := Stats{
		FramesProduced: m.framesEmitted.Load(),
		FramesDropped:  m.framesDropped.Load(),
		BytesRead:      m.bytesRead.Load(),
		FPSTarget:      m.fps,
	}
	if ts := m.lastFrameAt.Load(); ts != 0 {
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

func (m *MockStream) generateFrames(ctx context.Context) {
	defer m.wg.Done()

	interval := time.Duration(float64(time.Second) / m.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			seq++
			frame := Frame{
				Seq:       seq,
				Timestamp: time.Now(),
				Width:     m.width,
				Height:    m.height,
				Data:      m.renderScene(seq),
				Format:    m.format,
				Source:    m.source,
				TraceID:   uuid.New().String(),
			}

			select {
			case m.frames <- frame:
				m.framesEmitted.Add(1)
				m.bytesRead.Add(uint64(len(frame.Data)))
				m.lastFrameAt.Store(frame.Timestamp.UnixNano())
			default:
				m.framesDropped.Add(1)
			}
		}
	}
}

// renderScene draws the synthetic room for one frame. The wall brightness
// drifts sinusoidally to mimic camera auto exposure, so downstream masks
// change a little between frames the way a real feed would.
func (m *MockStream) renderScene(seq uint64) []byte {
	wobble := 12 * math.Sin(2*math.Pi*float64(seq)/90)
	wall := uint8(200 + wobble)

	data := make([]byte, m.width*m.height*3)
	for i := 0; i < len(data); i += 3 {
		data[i] = wall
		data[i+1] = wall
		data[i+2] = wall
	}

	// Furniture block in the lower left, picture frame upper right.
	m.fillRect(data, m.width/10, m.height*55/100, m.width*45/100, m.height*95/100, 70)
	m.fillRect(data, m.width*65/100, m.height*12/100, m.width*9/10, m.height*2/5, 35)
	return data
}

func (m *MockStream) fillRect(data []byte, x0, y0, x1, y1 int, v uint8) {
	for y := y0; y < y1 && y < m.height; y++ {
		for x := x0; x < x1 && x < m.width; x++ {
			off := (y*m.width + x) * 3
			data[off] = v
			data[off+1] = v
			data[off+2] = v
		}
	}
}
