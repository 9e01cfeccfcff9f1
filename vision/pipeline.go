package vision

import (
	"fmt"
	"image"
)

// PipelineConfig configures a Pipeline. All fields are fixed at construction;
// changing a setting at runtime means building a new Pipeline.
type PipelineConfig struct {
	// Format is the channel order of the frames the pipeline accepts.
	Format PixelFormat

	// Segmenter holds the wall segmentation thresholds.
	Segmenter SegmenterConfig

	// Alpha is the blend strength in [0, 1]. 0 leaves masked pixels
	// untouched, 1 paints them solid.
	Alpha float64

	// OutlineColor is drawn along wall boundaries, stored in the pipeline's
	// channel order.
	OutlineColor Color

	// OutlineThickness is the outline stroke width in pixels. 0 disables
	// the outline.
	OutlineThickness int
}

// DefaultPipelineConfig returns the standard preview setup for the given
// pixel format: default segmentation, alpha 0.7, a 2 pixel green outline.
func DefaultPipelineConfig(format PixelFormat) PipelineConfig {
	return PipelineConfig{
		Format:           format,
		Segmenter:        DefaultSegmenterConfig(),
		Alpha:            0.7,
		OutlineColor:     ColorRGB(0, 255, 0, format),
		OutlineThickness: 2,
	}
}

// Pipeline runs segmentation, composition and outlining as one immutable
// unit. A single Pipeline is safe for concurrent Process calls on different
// frames.
type Pipeline struct {
	cfg PipelineConfig
	seg *Segmenter
}

// NewPipeline validates the config and builds a Pipeline.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	seg, err := NewSegmenter(cfg.Segmenter)
	if err != nil {
		return nil, err
	}
	if !(cfg.Alpha >= 0 && cfg.Alpha <= 1) {
		return nil, fmt.Errorf("%w: alpha %v outside [0, 1]", ErrInvalidParameter, cfg.Alpha)
	}
	if cfg.OutlineThickness < 0 {
		return nil, fmt.Errorf("%w: outline thickness %d negative",
			ErrInvalidParameter, cfg.OutlineThickness)
	}
	return &Pipeline{cfg: cfg, seg: seg}, nil
}

// Config returns the settings the pipeline was built with.
func (p *Pipeline) Config() PipelineConfig { return p.cfg }

// ProcessResult carries the full output for one frame: the annotated frame,
// the wall mask and the traced wall boundaries.
type ProcessResult struct {
	// Output is the annotated frame: wall pixels blended with the selected
	// color, boundaries outlined.
	Output *Frame

	// Mask is the wall mask the output was built from.
	Mask *Mask

	// Contours are the outer wall boundaries, one clockwise point list per
	// wall region.
	Contours [][]image.Point
}

// Process runs segmentation, composition and outlining on one frame with the
// color currently selected in state, and returns the annotated output frame.
// Neither the input frame nor the state is modified; the output is a fresh
// buffer. A frame with no detectable wall comes back visually identical to
// the input.
func (p *Pipeline) Process(f *Frame, s *State) (*Frame, error) {
	res, err := p.ProcessFull(f, s)
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

// ProcessFull is Process plus the intermediate mask and contours, for sinks
// that export or inspect them.
func (p *Pipeline) ProcessFull(f *Frame, s *State) (*ProcessResult, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil state", ErrInvalidParameter)
	}
	if f != nil && f.Format != p.cfg.Format {
		return nil, fmt.Errorf("%w: frame is %s, pipeline wants %s",
			ErrFormatMismatch, f.Format, p.cfg.Format)
	}
	if s.Format() != p.cfg.Format {
		return nil, fmt.Errorf("%w: state is %s, pipeline wants %s",
			ErrFormatMismatch, s.Format(), p.cfg.Format)
	}

	mask, err := p.seg.Segment(f)
	if err != nil {
		return nil, err
	}
	out, err := Composite(f, mask, s.Color(), p.cfg.Alpha)
	if err != nil {
		return nil, err
	}
	contours := OuterContours(mask)
	drawContours(out, contours, p.cfg.OutlineColor, p.cfg.OutlineThickness)

	return &ProcessResult{Output: out, Mask: mask, Contours: contours}, nil
}
