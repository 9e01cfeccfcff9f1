package core

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/control"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/server"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/palette"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

// rateSetter is the optional capability of providers whose delivery rate can
// change while running. Only the RTSP source implements it.
type rateSetter interface {
	SetTargetFPS(fps float64) error
}

// controlCallbacks maps MQTT commands onto session operations.
func (s *Session) controlCallbacks() control.CommandCallbacks {
	return control.CommandCallbacks{
		OnSetColor:  s.setColor,
		OnSetPreset: s.setPreset,
		OnSetAlpha:  s.setAlpha,
		OnSetFPS:    s.setFPS,
		OnGetStatus: s.statusMap,
		OnSnapshot:  s.snapshot,
	}
}

// Status returns the current session snapshot.
func (s *Session) Status() server.Status {
	return s.buildStatus()
}

// Callbacks exposes the command surface for frontends beyond MQTT.
func (s *Session) Callbacks() control.CommandCallbacks {
	return s.controlCallbacks()
}

// setColor applies a hex selection to the live repaint. Invalid input leaves
// the current selection untouched.
func (s *Session) setColor(hex string) error {
	if err := s.state.SetHex(hex); err != nil {
		return err
	}

	applied := s.state.Hex()
	name := ""
	if entry, ok := palette.ByHex(applied); ok {
		name = entry.Name
	}

	slog.Info("wall color changed", "hex", applied, "name", name)

	if s.emitter != nil {
		if err := s.emitter.PublishColorChange(applied, name, s.alpha()); err != nil {
			slog.Warn("color change event not published", "error", err)
		}
	}

	return nil
}

// setPreset resolves a digit key to its catalog color and applies it.
func (s *Session) setPreset(key string) error {
	if len(key) != 1 {
		return fmt.Errorf("preset key %q must be a single digit 1..9", key)
	}
	entry, ok := palette.ByKey(rune(key[0]))
	if !ok {
		return fmt.Errorf("preset key %q must be a single digit 1..9", key)
	}
	return s.setColor(entry.Hex)
}

// setAlpha rebuilds the pipeline with a new blend strength and swaps it in.
// The old pipeline keeps serving frames until the swap, and stays if the new
// value is rejected.
func (s *Session) setAlpha(alpha float64) error {
	cfg := s.pipeline.Load().Config()
	old := cfg.Alpha
	cfg.Alpha = alpha

	next, err := vision.NewPipeline(cfg)
	if err != nil {
		return err
	}
	s.pipeline.Store(next)

	slog.Info("blend strength changed", "old", old, "new", alpha)
	return nil
}

// setFPS forwards a rate change to the capture source when it supports one.
func (s *Session) setFPS(fps float64) error {
	setter, ok := s.provider.(rateSetter)
	if !ok {
		return fmt.Errorf("capture source %s does not support live rate changes", s.provider.Name())
	}
	return setter.SetTargetFPS(fps)
}

// snapshot persists the most recent processed frame on demand.
func (s *Session) snapshot() (string, error) {
	if s.saver == nil {
		return "", fmt.Errorf("snapshots are disabled in config")
	}

	s.lastMu.Lock()
	rec := s.lastRec
	s.lastMu.Unlock()

	if rec == nil {
		return "", fmt.Errorf("no frame processed yet")
	}

	path, err := s.saver.Snapshot(*rec)
	if err != nil {
		return "", err
	}

	slog.Info("snapshot saved", "path", path, "seq", rec.Seq)
	return path, nil
}

// alpha returns the active blend strength.
func (s *Session) alpha() float64 {
	return s.pipeline.Load().Config().Alpha
}

// buildStatus assembles the typed status snapshot the HTTP server exposes.
func (s *Session) buildStatus() server.Status {
	s.mu.RLock()
	running := s.isRunning
	started := s.started
	s.mu.RUnlock()

	provStats := s.provider.Stats()
	captured := provStats.FramesProduced
	processed := s.framesProcessed.Load()
	consumed := s.framesConsumed.Load()

	// Frames that reached the buffer but aged out before processing count
	// as dropped alongside capture-side drops.
	skipped := uint64(0)
	if captured > consumed {
		skipped = captured - consumed
	}
	dropped := provStats.FramesDropped + skipped

	var uptime float64
	if running && !started.IsZero() {
		uptime = time.Since(started).Seconds()
	}

	var fpsProcessed float64
	if uptime > 0 {
		fpsProcessed = float64(processed) / uptime
	}

	var dropRate float64
	if total := captured + provStats.FramesDropped; total > 0 {
		dropRate = float64(dropped) / float64(total) * 100
	}

	status := server.Status{
		Instance:        s.cfg.Instance.ID,
		Room:            s.cfg.Instance.Room,
		Source:          s.provider.Name(),
		Running:         running,
		FirstFrameSeen:  s.firstFrame.Load(),
		UptimeSeconds:   int64(uptime),
		FramesCaptured:  captured,
		FramesProcessed: processed,
		FramesDropped:   dropped,
		Reconnects:      provStats.Reconnects,
		FPSTarget:       provStats.FPSTarget,
		FPSProcessed:    math.Round(fpsProcessed*100) / 100,
		DropRate:        math.Round(dropRate*100) / 100,
		Coverage:        math.Round(s.coverage()*10000) / 10000,
		CurrentColor:    s.state.Hex(),
		Alpha:           s.alpha(),
	}

	if s.emitter != nil {
		status.MQTTConnected = s.emitter.Stats().Connected
	}
	if s.saver != nil {
		saved, _, _ := s.saver.Stats()
		status.SnapshotsSaved = saved
	}

	return status
}

// statusMap is the loosely typed status for MQTT responses and periodic
// stats events.
func (s *Session) statusMap() map[string]interface{} {
	status := s.buildStatus()

	capture := map[string]interface{}{
		"source":           status.Source,
		"frames_captured":  status.FramesCaptured,
		"frames_processed": status.FramesProcessed,
		"frames_dropped":   status.FramesDropped,
		"fps_target":       status.FPSTarget,
		"fps_processed":    status.FPSProcessed,
		"drop_rate":        status.DropRate,
		"reconnects":       status.Reconnects,
	}

	out := map[string]interface{}{
		"instance":      status.Instance,
		"room":          status.Room,
		"version":       s.version,
		"running":       status.Running,
		"uptime_s":      status.UptimeSeconds,
		"current_color": status.CurrentColor,
		"alpha":         status.Alpha,
		"coverage":      status.Coverage,
		"capture":       capture,
	}

	if s.emitter != nil {
		emitterStats := s.emitter.Stats()
		out["emitter"] = map[string]interface{}{
			"connected": emitterStats.Connected,
			"published": emitterStats.Published,
			"errors":    emitterStats.Errors,
		}
	}

	if s.saver != nil {
		saved, dropped, svgs := s.saver.Stats()
		out["output"] = map[string]interface{}{
			"frames_saved":   saved,
			"frames_dropped": dropped,
			"svgs_saved":     svgs,
		}
	}

	return out
}
