package stream

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

// TestNewFileStreamValidation verifies config errors are caught before
// ffmpeg is touched.
func TestNewFileStreamValidation(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "walkthrough.mp4")
	if err := os.WriteFile(video, []byte("not a real video"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tests := []struct {
		name    string
		cfg     FileConfig
		wantErr bool
	}{
		{
			name:    "valid",
			cfg:     FileConfig{Path: video, Width: 640, Height: 480, FPS: 10, Format: vision.FormatRGB},
			wantErr: false,
		},
		{
			name:    "empty path",
			cfg:     FileConfig{Path: "", Width: 640, Height: 480, FPS: 10},
			wantErr: true,
		},
		{
			name:    "missing file",
			cfg:     FileConfig{Path: filepath.Join(dir, "absent.mp4"), Width: 640, Height: 480, FPS: 10},
			wantErr: true,
		},
		{
			name:    "directory",
			cfg:     FileConfig{Path: dir, Width: 640, Height: 480, FPS: 10},
			wantErr: true,
		},
		{
			name:    "zero width",
			cfg:     FileConfig{Path: video, Width: 0, Height: 480, FPS: 10},
			wantErr: true,
		},
		{
			name:    "fps too high",
			cfg:     FileConfig{Path: video, Width: 640, Height: 480, FPS: 120},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFileStream(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFileStream() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && f.Name() != "file" {
				t.Errorf("Name() = %q, want file", f.Name())
			}
		})
	}
}

// TestParseRate verifies ffprobe rational rates parse with sane fallbacks.
func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97},
		{"1/10", 0.1},
		{"0/0", 0},
		{"", 0},
		{"abc/def", 0},
		{"25", 0},
	}

	for _, tt := range tests {
		got := parseRate(tt.in)
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("parseRate(%q) = %.4f, want %.2f", tt.in, got, tt.want)
		}
	}
}

// TestProbeInfoParsing verifies the ffprobe JSON subset decodes and the
// video stream is selectable among others.
func TestProbeInfoParsing(t *testing.T) {
	raw := `{
		"streams": [
			{"codec_type": "audio", "avg_frame_rate": "0/0"},
			{"codec_type": "video", "width": 1920, "height": 1080, "avg_frame_rate": "30000/1001"}
		]
	}`

	var info probeInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(info.Streams) != 2 {
		t.Fatalf("parsed %d streams, want 2", len(info.Streams))
	}

	var found bool
	for _, s := range info.Streams {
		if s.CodecType != "video" {
			continue
		}
		found = true
		if s.Width != 1920 || s.Height != 1080 {
			t.Errorf("video stream %dx%d, want 1920x1080", s.Width, s.Height)
		}
		if fps := parseRate(s.AvgFrameRate); math.Abs(fps-29.97) > 0.01 {
			t.Errorf("video rate %.4f, want ~29.97", fps)
		}
	}
	if !found {
		t.Fatal("no video stream found in probe output")
	}
}

// TestFileStreamStatsZero verifies a stopped source reports empty stats.
func TestFileStreamStatsZero(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(video, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	f, err := NewFileStream(FileConfig{Path: video, Width: 320, Height: 240, FPS: 5, Format: vision.FormatBGR})
	if err != nil {
		t.Fatalf("NewFileStream: %v", err)
	}

	s := f.Stats()
	if s.FramesProduced != 0 || s.BytesRead != 0 {
		t.Errorf("fresh stats not zeroed: %+v", s)
	}
	if s.FPSTarget != 5 {
		t.Errorf("FPSTarget = %.1f, want 5", s.FPSTarget)
	}
	if err := f.Stop(); err != nil {
		t.Errorf("Stop before Start returned %v", err)
	}
}
