package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/control"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/server"
)

func keyEvent(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

// TestStatusLinesContent verifies the facts a running session renders.
func TestStatusLinesContent(t *testing.T) {
	lines := statusLines(server.Status{
		Instance:        "kiosk-1",
		Room:            "showroom",
		Source:          "rtsp",
		Running:         true,
		FirstFrameSeen:  true,
		UptimeSeconds:   42,
		FramesCaptured:  100,
		FramesProcessed: 90,
		FramesDropped:   10,
		FPSTarget:       10,
		FPSProcessed:    9.5,
		Coverage:        0.423,
		CurrentColor:    "#FF7F50",
		Alpha:           0.7,
		MQTTConnected:   true,
		SnapshotsSaved:  3,
	})
	joined := strings.Join(lines, "\n")

	for _, want := range []string{
		"kiosk-1 (showroom)",
		"rtsp, running",
		"Coral (#FF7F50)",
		"alpha 0.70",
		"42.3% of frame",
		"10.0 target, 9.5 processed",
		"100 captured, 90 processed, 10 dropped",
		"MQTT       connected",
		"3 saved",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("status lines missing %q:\n%s", want, joined)
		}
	}
}

// TestStatusLinesStates verifies the lifecycle phrasing.
func TestStatusLinesStates(t *testing.T) {
	joined := strings.Join(statusLines(server.Status{Source: "mock"}), "\n")
	if !strings.Contains(joined, "mock, stopped") {
		t.Errorf("stopped session not labeled:\n%s", joined)
	}

	joined = strings.Join(statusLines(server.Status{Source: "mock", Running: true}), "\n")
	if !strings.Contains(joined, "waiting for first frame") {
		t.Errorf("pre-frame session not labeled:\n%s", joined)
	}

	// An off-catalog color renders as its raw hex.
	joined = strings.Join(statusLines(server.Status{CurrentColor: "#123456"}), "\n")
	if !strings.Contains(joined, "#123456") {
		t.Errorf("custom color missing:\n%s", joined)
	}
}

// TestHandleKeyPresets verifies digit keys dispatch presets and report the
// chosen color.
func TestHandleKeyPresets(t *testing.T) {
	var got string
	u := New("test", func() server.Status { return server.Status{} }, control.CommandCallbacks{
		OnSetPreset: func(key string) error {
			got = key
			return nil
		},
	})

	if !u.handleKey(keyEvent('3')) {
		t.Fatal("preset key quit the screen")
	}
	if got != "3" {
		t.Errorf("preset callback got %q, want 3", got)
	}
	if !strings.Contains(u.message(), "Light Gray") {
		t.Errorf("message = %q, want the preset name", u.message())
	}

	u.cb.OnSetPreset = func(string) error { return errors.New("session stopped") }
	u.handleKey(keyEvent('5'))
	if !strings.Contains(u.message(), "preset failed") {
		t.Errorf("message = %q, want failure note", u.message())
	}
}

// TestHandleKeyQuit verifies every quit chord and that unknown keys are
// ignored.
func TestHandleKeyQuit(t *testing.T) {
	called := false
	u := New("test", func() server.Status { return server.Status{} }, control.CommandCallbacks{
		OnSetPreset: func(string) error { called = true; return nil },
		OnSnapshot:  func() (string, error) { called = true; return "", nil },
	})

	if u.handleKey(keyEvent('q')) {
		t.Error("'q' did not quit")
	}
	if u.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("escape did not quit")
	}
	if u.handleKey(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)) {
		t.Error("ctrl-c did not quit")
	}

	if !u.handleKey(keyEvent('x')) {
		t.Error("unmapped key quit the screen")
	}
	if called {
		t.Error("unmapped key reached a callback")
	}
}

// TestHandleKeySnapshot verifies both snapshot outcomes surface in the
// message line.
func TestHandleKeySnapshot(t *testing.T) {
	u := New("test", func() server.Status { return server.Status{} }, control.CommandCallbacks{
		OnSnapshot: func() (string, error) {
			return "/captures/snapshot_000007.png", nil
		},
	})

	u.handleKey(keyEvent('s'))
	if !strings.Contains(u.message(), "snapshot_000007.png") {
		t.Errorf("message = %q, want saved path", u.message())
	}

	u.cb.OnSnapshot = func() (string, error) { return "", errors.New("no frame processed yet") }
	u.handleKey(keyEvent('s'))
	if !strings.Contains(u.message(), "snapshot failed") {
		t.Errorf("message = %q, want failure note", u.message())
	}
}

// TestMessageExpiry verifies transient messages disappear after their TTL.
func TestMessageExpiry(t *testing.T) {
	u := New("test", func() server.Status { return server.Status{} }, control.CommandCallbacks{})

	u.setMessage("hello")
	if u.message() != "hello" {
		t.Fatalf("message = %q, want hello", u.message())
	}

	u.lastMsgAt = time.Now().Add(-messageTTL - time.Second)
	if u.message() != "" {
		t.Errorf("message = %q after TTL, want empty", u.message())
	}
}
