package stream

import (
	"strings"
	"testing"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

// TestNewRTSPStreamFailFast verifies configuration errors are caught at
// construction time, before any pipeline exists.
func TestNewRTSPStreamFailFast(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RTSPConfig
		wantErr string
	}{
		{
			name:    "empty url",
			cfg:     RTSPConfig{URL: "", Width: 640, Height: 480, FPS: 5},
			wantErr: "must start with rtsp://",
		},
		{
			name:    "http url",
			cfg:     RTSPConfig{URL: "http://cam.local/stream", Width: 640, Height: 480, FPS: 5},
			wantErr: "must start with rtsp://",
		},
		{
			name:    "zero width",
			cfg:     RTSPConfig{URL: "rtsp://cam.local/stream", Width: 0, Height: 480, FPS: 5},
			wantErr: "invalid resolution",
		},
		{
			name:    "negative height",
			cfg:     RTSPConfig{URL: "rtsp://cam.local/stream", Width: 640, Height: -1, FPS: 5},
			wantErr: "invalid resolution",
		},
		{
			name:    "fps too low",
			cfg:     RTSPConfig{URL: "rtsp://cam.local/stream", Width: 640, Height: 480, FPS: 0.05},
			wantErr: "outside 0.1..60",
		},
		{
			name:    "fps too high",
			cfg:     RTSPConfig{URL: "rtsp://cam.local/stream", Width: 640, Height: 480, FPS: 100},
			wantErr: "outside 0.1..60",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRTSPStream(tt.cfg)
			if err == nil {
				t.Fatalf("NewRTSPStream() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewRTSPStream() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

// TestNewRTSPStreamValid verifies a well-formed config constructs a stopped
// source with zeroed stats. Needs a working GStreamer installation.
func TestNewRTSPStreamValid(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping GStreamer init in short mode")
	}

	r, err := NewRTSPStream(RTSPConfig{
		URL:    "rtsp://cam.local/stream",
		Width:  640,
		Height: 480,
		FPS:    5,
		Format: vision.FormatRGB,
	})
	if err != nil {
		t.Fatalf("NewRTSPStream: %v", err)
	}
	if r.Name() != "rtsp" {
		t.Errorf("Name() = %q, want rtsp", r.Name())
	}
	if ch := r.Frames(); ch != nil {
		t.Error("Frames() not nil before Start")
	}

	s := r.Stats()
	if s.FramesProduced != 0 || s.FramesDropped != 0 || s.Reconnects != 0 {
		t.Errorf("fresh stats not zeroed: %+v", s)
	}
	if s.FPSTarget != 5 {
		t.Errorf("FPSTarget = %.1f, want 5", s.FPSTarget)
	}

	if err := r.Stop(); err != nil {
		t.Errorf("Stop before Start returned %v", err)
	}
}

// TestRTSPStreamSetTargetFPSValidation verifies rate bounds apply even with
// no pipeline up.
func TestRTSPStreamSetTargetFPSValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping GStreamer init in short mode")
	}

	r, err := NewRTSPStream(RTSPConfig{
		URL:    "rtsp://cam.local/stream",
		Width:  640,
		Height: 480,
		FPS:    5,
		Format: vision.FormatRGB,
	})
	if err != nil {
		t.Fatalf("NewRTSPStream: %v", err)
	}

	if err := r.SetTargetFPS(0); err == nil {
		t.Error("SetTargetFPS(0) did not fail")
	}
	if err := r.SetTargetFPS(2); err != nil {
		t.Errorf("SetTargetFPS(2) with no pipeline: %v", err)
	}
	if got := r.Stats().FPSTarget; got != 2 {
		t.Errorf("FPSTarget after update = %.1f, want 2", got)
	}
}
