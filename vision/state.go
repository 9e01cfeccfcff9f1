package vision

import "sync/atomic"

// State holds the currently selected paint color. It is the only mutable
// value the pipeline reads: the color is packed into one machine word so
// readers always see a complete color without locking, and writers replace it
// with a single atomic swap. Everything else about a running pipeline is
// immutable after construction.
type State struct {
	format PixelFormat
	packed atomic.Uint32
}

// NewState returns a State for frames in the given format, initialized to
// opaque white.
func NewState(format PixelFormat) *State {
	s := &State{format: format}
	s.Set(ColorRGB(255, 255, 255, format))
	return s
}

// Format returns the channel order colors in this state are stored in.
func (s *State) Format() PixelFormat { return s.format }

// Set replaces the selected color. The color must already be in the state's
// channel order.
func (s *State) Set(c Color) {
	s.packed.Store(uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2]))
}

// SetHex parses a hex color string and replaces the selected color. On a
// malformed string it returns ErrInvalidColorFormat and the stored color is
// left unchanged.
func (s *State) SetHex(hex string) error {
	c, err := ParseHex(hex, s.format)
	if err != nil {
		return err
	}
	s.Set(c)
	return nil
}

// Color returns one consistent snapshot of the selected color.
func (s *State) Color() Color {
	v := s.packed.Load()
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

// Hex returns the selected color as an uppercase "#RRGGBB" string.
func (s *State) Hex() string {
	return s.Color().Hex(s.format)
}
