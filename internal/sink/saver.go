// Package sink persists processed frames to disk as PNG or JPEG snapshots,
// optionally side by side with the original and with the detected wall
// region exported as SVG. Safe for concurrent use.
package sink

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/config"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

// Record bundles one processed frame for saving.
type Record struct {
	Seq       uint64
	Timestamp time.Time
	Original  *vision.Frame
	Output    *vision.Frame
	Contours  [][]image.Point
}

// Saver writes snapshots into a directory. Filenames carry the frame
// sequence and timestamp: frame_000042_20251105_234517.123.png.
type Saver struct {
	dir         string
	format      string
	jpegQuality int
	everyN      uint64
	sideBySide  bool
	maxWidth    int
	svgContours bool

	framesSaved   atomic.Uint64
	framesDropped atomic.Uint64
	svgSaved      atomic.Uint64
}

// NewSaver creates the output directory and validates the format.
func NewSaver(cfg config.OutputConfig) (*Saver, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if cfg.Format != "png" && cfg.Format != "jpeg" {
		return nil, fmt.Errorf("unsupported format: %s (must be png or jpeg)", cfg.Format)
	}
	quality := cfg.JPEGQuality
	if quality <= 0 {
		quality = 85
	}

	var everyN uint64
	if cfg.EveryN > 0 {
		everyN = uint64(cfg.EveryN)
	}

	return &Saver{
		dir:         cfg.Dir,
		format:      cfg.Format,
		jpegQuality: quality,
		everyN:      everyN,
		sideBySide:  cfg.SideBySide,
		maxWidth:    cfg.MaxWidth,
		svgContours: cfg.SVGContours,
	}, nil
}

// ShouldSave reports whether the periodic schedule wants this frame.
// An every-N of zero disables periodic saving entirely.
func (s *Saver) ShouldSave(seq uint64) bool {
	return s.everyN > 0 && seq%s.everyN == 0
}

// Save writes a scheduled snapshot and returns the image path.
func (s *Saver) Save(rec Record) (string, error) {
	return s.save("frame", rec)
}

// Snapshot writes an on-demand snapshot regardless of the schedule.
func (s *Saver) Snapshot(rec Record) (string, error) {
	return s.save("snapshot", rec)
}

func (s *Saver) save(prefix string, rec Record) (string, error) {
	if rec.Output == nil {
		s.framesDropped.Add(1)
		return "", fmt.Errorf("no output frame to save")
	}

	img := s.compose(rec)

	base := fmt.Sprintf("%s_%06d_%s", prefix, rec.Seq, rec.Timestamp.Format("20060102_150405.000"))
	path := filepath.Join(s.dir, base+"."+s.format)

	file, err := os.Create(path)
	if err != nil {
		s.framesDropped.Add(1)
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	switch s.format {
	case "png":
		err = png.Encode(file, img)
	case "jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: s.jpegQuality})
	}
	if err != nil {
		s.framesDropped.Add(1)
		return "", fmt.Errorf("%s encode failed: %w", s.format, err)
	}
	s.framesSaved.Add(1)

	if s.svgContours {
		svgPath := filepath.Join(s.dir, base+".svg")
		if err := s.saveSVG(svgPath, rec); err != nil {
			// The raster snapshot is already on disk; report and move on.
			slog.Warn("sink: svg export failed", "path", svgPath, "error", err)
		} else {
			s.svgSaved.Add(1)
		}
	}

	return path, nil
}

func (s *Saver) saveSVG(path string, rec Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()
	return WriteContoursSVG(file, rec.Output.Width, rec.Output.Height, rec.Contours, "", 0)
}

// compose builds the image to encode: the repainted frame, optionally next
// to the original, downscaled when wider than the configured limit.
func (s *Saver) compose(rec Record) *image.RGBA {
	out := frameToRGBA(rec.Output)

	if s.sideBySide && rec.Original != nil &&
		rec.Original.Width == rec.Output.Width && rec.Original.Height == rec.Output.Height {
		w, h := rec.Output.Width, rec.Output.Height
		canvas := image.NewRGBA(image.Rect(0, 0, w*2, h))
		xdraw.Draw(canvas, image.Rect(0, 0, w, h), frameToRGBA(rec.Original), image.Point{}, xdraw.Src)
		xdraw.Draw(canvas, image.Rect(w, 0, w*2, h), out, image.Point{}, xdraw.Src)
		out = canvas
	}

	if s.maxWidth > 0 && out.Bounds().Dx() > s.maxWidth {
		srcW := out.Bounds().Dx()
		srcH := out.Bounds().Dy()
		dstH := srcH * s.maxWidth / srcW
		if dstH < 1 {
			dstH = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, s.maxWidth, dstH))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), out, out.Bounds(), xdraw.Src, nil)
		out = scaled
	}

	return out
}

// Stats returns save counters: raster snapshots written, failures, SVG
// exports written.
func (s *Saver) Stats() (saved, dropped, svgs uint64) {
	return s.framesSaved.Load(), s.framesDropped.Load(), s.svgSaved.Load()
}

// frameToRGBA expands packed 3-byte pixels to RGBA with full opacity,
// honoring the frame's channel order.
func frameToRGBA(f *vision.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	i := 0
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, b := f.RGBAt(x, y)
			img.Pix[i] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = b
			img.Pix[i+3] = 255
			i += 4
		}
	}
	return img
}
