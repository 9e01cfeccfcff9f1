// Package tui renders a terminal status screen for a running session and
// maps keys onto the same command callbacks the MQTT control plane uses.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/control"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/server"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/palette"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

const (
	refreshInterval = 500 * time.Millisecond
	messageTTL      = 5 * time.Second
)

// UI is the interactive status screen. It owns no session state; everything
// it shows comes from the status callback, everything it changes goes
// through the command callbacks.
type UI struct {
	version string
	status  func() server.Status
	cb      control.CommandCallbacks

	screen tcell.Screen

	lastMsg   string
	lastMsgAt time.Time
}

// New builds a UI. The terminal is not touched until Run.
func New(version string, status func() server.Status, cb control.CommandCallbacks) *UI {
	return &UI{
		version: version,
		status:  status,
		cb:      cb,
	}
}

// Run takes over the terminal until the user quits or the context ends.
func (u *UI) Run(ctx context.Context) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	u.screen = screen
	defer screen.Fini()

	// PollEvent returns nil after Fini, which ends this goroutine.
	eventChan := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	u.draw()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !u.handleKey(ev) {
					return nil
				}
				u.draw()
			case *tcell.EventResize:
				screen.Sync()
				u.draw()
			}

		case <-ticker.C:
			u.draw()
		}
	}
}

// handleKey dispatches one keypress. Returning false quits the screen.
func (u *UI) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return false
	}
	if ev.Key() != tcell.KeyRune {
		return true
	}

	switch r := ev.Rune(); {
	case r == 'q':
		return false

	case r >= '1' && r <= '9':
		if u.cb.OnSetPreset == nil {
			return true
		}
		if err := u.cb.OnSetPreset(string(r)); err != nil {
			u.setMessage(fmt.Sprintf("preset failed: %v", err))
		} else if entry, ok := palette.ByKey(r); ok {
			u.setMessage(fmt.Sprintf("color set to %s", entry))
		}

	case r == 's':
		if u.cb.OnSnapshot == nil {
			return true
		}
		if path, err := u.cb.OnSnapshot(); err != nil {
			u.setMessage(fmt.Sprintf("snapshot failed: %v", err))
		} else {
			u.setMessage(fmt.Sprintf("snapshot saved: %s", path))
		}
	}

	return true
}

func (u *UI) setMessage(msg string) {
	u.lastMsg = msg
	u.lastMsgAt = time.Now()
}

// message returns the transient status line, empty once it has expired.
func (u *UI) message() string {
	if u.lastMsg == "" || time.Since(u.lastMsgAt) > messageTTL {
		return ""
	}
	return u.lastMsg
}

// draw repaints the whole screen from one status snapshot.
func (u *UI) draw() {
	if u.screen == nil {
		return
	}
	u.screen.Clear()

	status := u.status()

	header := tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	drawText(u.screen, 0, 0, header, fmt.Sprintf("AR Colorize %s", u.version))

	for i, line := range statusLines(status) {
		drawText(u.screen, 0, 2+i, tcell.StyleDefault, line)
	}

	row := 2 + len(statusLines(status)) + 1
	drawText(u.screen, 0, row, tcell.StyleDefault.Bold(true), "Presets")
	row++
	for i, entry := range palette.Default() {
		if i >= 9 {
			break
		}
		style := tcell.StyleDefault
		if entry.Hex == status.CurrentColor {
			style = style.Reverse(true)
		}
		if c, err := vision.ParseHex(entry.Hex, vision.FormatRGB); err == nil {
			style = style.Foreground(tcell.NewRGBColor(int32(c[0]), int32(c[1]), int32(c[2])))
		}
		drawText(u.screen, 0, row, style, fmt.Sprintf(" %d %s", i+1, entry))
		row++
	}

	row++
	if msg := u.message(); msg != "" {
		drawText(u.screen, 0, row, tcell.StyleDefault.Foreground(tcell.ColorYellow), msg)
		row++
	}
	drawText(u.screen, 0, row+1, tcell.StyleDefault.Dim(true),
		"[1-9] preset   [s] snapshot   [q] quit")

	u.screen.Show()
}

// statusLines formats the session snapshot for display, one line per fact.
func statusLines(s server.Status) []string {
	state := "stopped"
	if s.Running {
		state = "running"
		if !s.FirstFrameSeen {
			state = "waiting for first frame"
		}
	}

	color := s.CurrentColor
	if entry, ok := palette.ByHex(s.CurrentColor); ok {
		color = entry.String()
	}

	lines := []string{
		fmt.Sprintf("Instance   %s (%s)", s.Instance, s.Room),
		fmt.Sprintf("Source     %s, %s", s.Source, state),
		fmt.Sprintf("Color      %s, alpha %.2f", color, s.Alpha),
		fmt.Sprintf("Wall       %.1f%% of frame", s.Coverage*100),
		fmt.Sprintf("FPS        %.1f target, %.1f processed", s.FPSTarget, s.FPSProcessed),
		fmt.Sprintf("Frames     %d captured, %d processed, %d dropped",
			s.FramesCaptured, s.FramesProcessed, s.FramesDropped),
		fmt.Sprintf("Uptime     %ds, reconnects %d", s.UptimeSeconds, s.Reconnects),
	}

	if s.MQTTConnected {
		lines = append(lines, "MQTT       connected")
	}
	if s.SnapshotsSaved > 0 {
		lines = append(lines, fmt.Sprintf("Snapshots  %d saved", s.SnapshotsSaved))
	}

	return lines
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		s.SetContent(col, y, r, nil, style)
		col++
	}
}
