// Package server exposes the HTTP API: palette listing, color selection,
// and the health, readiness and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/palette"
)

// Status is the session snapshot served by the readiness and metrics
// endpoints.
type Status struct {
	Instance        string  `json:"instance"`
	Room            string  `json:"room"`
	Source          string  `json:"source"`
	Running         bool    `json:"running"`
	FirstFrameSeen  bool    `json:"first_frame_seen"`
	UptimeSeconds   int64   `json:"uptime_seconds"`
	FramesCaptured  uint64  `json:"frames_captured"`
	FramesProcessed uint64  `json:"frames_processed"`
	FramesDropped   uint64  `json:"frames_dropped"`
	Reconnects      uint32  `json:"reconnects"`
	FPSTarget       float64 `json:"fps_target"`
	FPSProcessed    float64 `json:"fps_processed"`
	DropRate        float64 `json:"drop_rate"`
	Coverage        float64 `json:"coverage"`
	CurrentColor    string  `json:"current_color"`
	Alpha           float64 `json:"alpha"`
	MQTTConnected   bool    `json:"mqtt_connected"`
	SnapshotsSaved  uint64  `json:"snapshots_saved"`
}

// Callbacks connect the API to the running session.
type Callbacks struct {
	// SetColor applies a hex selection to the live repaint.
	SetColor func(hex string) error

	// CurrentColor returns the active selection as a hex string.
	CurrentColor func() string

	// Alpha returns the active blend strength.
	Alpha func() float64

	// Status returns a session snapshot.
	Status func() Status
}

// Server is the HTTP surface. Start is non-blocking; Shutdown drains
// in-flight requests.
type Server struct {
	addr    string
	version string
	cb      Callbacks
	srv     *http.Server
}

// New builds a stopped server for the given listen address.
func New(addr, version string, cb Callbacks) *Server {
	return &Server{addr: addr, version: version, cb: cb}
}

// Handler returns the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/colors", s.handleColors)
	mux.HandleFunc("/api/info", s.handleInfo)
	mux.HandleFunc("/api/color", s.handleColor)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/readiness", s.handleReadiness)
	mux.HandleFunc("/metrics", s.handleMetrics)
	return mux
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server: listening",
		"addr", s.addr,
		"endpoints", []string{"/api/colors", "/api/info", "/api/color", "/health", "/readiness", "/metrics"},
	)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server: failed", "error", err)
		}
	}()
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleColors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "error": "method not allowed"})
		return
	}
	colors := palette.Default()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"colors":  colors,
		"count":   len(colors),
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"name":        "AR Colorize",
		"description": "Real-time wall repainting over a live camera feed",
		"version":     s.version,
		"features": []string{
			"edge-aware wall segmentation",
			"live color blending with contour outlines",
			"curated 12-color paint palette",
			"REST and MQTT control",
		},
	})
}

func (s *Server) handleColor(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		hex := s.cb.CurrentColor()
		var name string
		if entry, ok := palette.ByHex(hex); ok {
			name = entry.Name
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"hex":     hex,
			"name":    name,
			"alpha":   s.cb.Alpha(),
		})

	case http.MethodPost:
		var req struct {
			Hex string `json:"hex"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid JSON body"})
			return
		}
		if err := s.cb.SetColor(req.Hex); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
			return
		}

		resp := map[string]any{"success": true, "hex": req.Hex}
		if nearest, dist, err := palette.Nearest(req.Hex); err == nil {
			resp["nearest"] = nearest
			resp["nearest_distance"] = math.Round(dist*1000) / 1000
		}
		writeJSON(w, http.StatusOK, resp)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "error": "method not allowed"})
	}
}

// handleHealth is a pure liveness probe: reachable means alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.cb.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "alive",
		"uptime": st.UptimeSeconds,
	})
}

// handleReadiness reports 503 until capture is running and the first frame
// has been processed.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	st := s.cb.Status()
	code := http.StatusOK
	if !st.Running || !st.FirstFrameSeen {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, st)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cb.Status())
}
