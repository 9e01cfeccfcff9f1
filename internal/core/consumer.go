package core

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/sink"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/stream"
)

// pumpFrames moves frames from the capture channel into the latest-wins
// buffer. A slow processor never backs up into the provider; overwritten
// frames simply age out. Channel close is terminal: the capture source has
// given up (file ended, reconnects exhausted), so the whole run ends.
func (s *Session) pumpFrames(ctx context.Context) {
	defer s.wg.Done()
	defer s.latest.Close()

	slog.Info("frame pump started")

	for {
		select {
		case <-ctx.Done():
			slog.Info("frame pump stopping")
			return

		case f, ok := <-s.provider.Frames():
			if !ok {
				slog.Info("capture channel closed, ending session",
					"frames_captured", s.provider.Stats().FramesProduced)
				s.mu.RLock()
				cancel := s.cancelRun
				s.mu.RUnlock()
				if cancel != nil {
					cancel()
				}
				return
			}
			s.latest.Set(f)
		}
	}
}

// processFrames consumes the newest frame, runs the vision pipeline and
// forwards results to the sinks. It exits when the latest buffer closes,
// which the pump guarantees on every termination path.
func (s *Session) processFrames() {
	defer s.wg.Done()

	slog.Info("frame processor started")

	lastLog := time.Now()
	const logInterval = 5 * time.Second

	for {
		f, ok := s.latest.Receive()
		if !ok {
			slog.Info("frame processor stopping",
				"frames_processed", s.framesProcessed.Load())
			return
		}

		s.framesConsumed.Add(1)
		s.processOne(&f)

		if time.Since(lastLog) >= logInterval {
			provStats := s.provider.Stats()
			slog.Debug("session stats",
				"frames_captured", provStats.FramesProduced,
				"frames_processed", s.framesProcessed.Load(),
				"capture_drops", provStats.FramesDropped,
				"fps_real", math.Round(provStats.FPSReal*100)/100,
				"coverage", math.Round(s.coverage()*1000)/1000,
				"last_seq", f.Seq,
			)
			lastLog = time.Now()
		}
	}
}

// processOne runs the pipeline on a single frame. Per-frame failures are
// counted and skipped; the capture loop decides retry policy, never this
// one.
func (s *Session) processOne(f *stream.Frame) {
	vf, err := f.ToVision()
	if err != nil {
		s.processErrors.Add(1)
		slog.Warn("skipping malformed frame", "seq", f.Seq, "error", err)
		return
	}

	res, err := s.pipeline.Load().ProcessFull(vf, s.state)
	if err != nil {
		s.processErrors.Add(1)
		slog.Warn("frame processing failed", "seq", f.Seq, "error", err)
		return
	}

	s.framesProcessed.Add(1)
	s.coverageBits.Store(math.Float64bits(res.Mask.Coverage()))

	if s.firstFrame.CompareAndSwap(false, true) {
		slog.Info("first frame processed",
			"seq", f.Seq,
			"resolution", fmt.Sprintf("%dx%d", f.Width, f.Height),
			"trace_id", f.TraceID,
		)
	}

	rec := sink.Record{
		Seq:       f.Seq,
		Timestamp: f.Timestamp,
		Original:  vf,
		Output:    res.Output,
		Contours:  res.Contours,
	}

	s.lastMu.Lock()
	s.lastRec = &rec
	s.lastMu.Unlock()

	if s.saver != nil && s.saver.ShouldSave(f.Seq) {
		if _, err := s.saver.Save(rec); err != nil {
			slog.Warn("scheduled frame save failed", "seq", f.Seq, "error", err)
		}
	}
}

// coverage returns the wall fraction of the most recent processed frame.
func (s *Session) coverage() float64 {
	return math.Float64frombits(s.coverageBits.Load())
}
