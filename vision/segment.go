package vision

import "fmt"

// SegmenterConfig holds the tunable thresholds of wall segmentation. The zero
// value is not usable; start from DefaultSegmenterConfig.
type SegmenterConfig struct {
	// EdgeLow is the low hysteresis threshold. Gradient magnitudes at or
	// above it extend an edge seeded by a strong pixel.
	EdgeLow uint8

	// EdgeHigh is the high hysteresis threshold. Gradient magnitudes at or
	// above it seed edges. Must not be below EdgeLow.
	EdgeHigh uint8

	// BrightnessThreshold is the luminance cutoff. Pixels strictly brighter
	// are wall candidates.
	BrightnessThreshold uint8

	// KernelSize is the side length of the square morphology kernel, in
	// pixels. Must be odd and at least 1.
	KernelSize int
}

// DefaultSegmenterConfig returns the thresholds the heuristic was tuned with:
// hysteresis 50/150, brightness cutoff 100, 5x5 kernel.
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		EdgeLow:             50,
		EdgeHigh:            150,
		BrightnessThreshold: 100,
		KernelSize:          5,
	}
}

// Segmenter extracts the wall mask from a frame. It keeps no state between
// calls; one Segmenter is safe for concurrent use.
type Segmenter struct {
	cfg SegmenterConfig
}

// NewSegmenter validates the config and returns a Segmenter.
func NewSegmenter(cfg SegmenterConfig) (*Segmenter, error) {
	if cfg.KernelSize < 1 || cfg.KernelSize%2 == 0 {
		return nil, fmt.Errorf("%w: kernel size %d must be odd and positive",
			ErrInvalidParameter, cfg.KernelSize)
	}
	if cfg.EdgeLow > cfg.EdgeHigh {
		return nil, fmt.Errorf("%w: edge thresholds %d/%d inverted",
			ErrInvalidParameter, cfg.EdgeLow, cfg.EdgeHigh)
	}
	return &Segmenter{cfg: cfg}, nil
}

// Config returns the thresholds the segmenter was built with.
func (s *Segmenter) Config() SegmenterConfig { return s.cfg }

// Segment computes the wall mask for a frame. The same frame always yields
// the same mask, and the frame is never written.
//
// The heuristic: convert to luminance, detect strong edges, keep pixels
// brighter than the cutoff, clean the candidate region with a morphological
// close then open, and subtract dilated edges so the mask never crosses an
// object boundary. An all-dark frame yields an all-zero mask, which is a
// valid result.
func (s *Segmenter) Segment(f *Frame) (*Mask, error) {
	if f == nil || f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("%w: nil or empty frame", ErrInvalidDimensions)
	}
	if want := f.Width * f.Height * f.Format.BytesPerPixel(); len(f.Data) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrBufferSize, len(f.Data), want)
	}

	w, h := f.Width, f.Height
	gray := lumaPlane(f)
	edges := detectEdges(gray, w, h, s.cfg.EdgeLow, s.cfg.EdgeHigh)

	bright := make([]byte, len(gray))
	cut := s.cfg.BrightnessThreshold
	for i, v := range gray {
		if v > cut {
			bright[i] = 255
		}
	}

	k := s.cfg.KernelSize
	cleaned := morphOpen(morphClose(bright, w, h, k), w, h, k)
	wide := dilatePlane(edges, w, h, k)

	// Keep bright pixels that are clear of any widened edge.
	for i := range cleaned {
		cleaned[i] &^= wide[i]
	}
	return &Mask{Data: cleaned, Width: w, Height: h}, nil
}
