package vision

import "fmt"

// PixelFormat identifies the channel order of a packed 24-bit pixel buffer.
type PixelFormat int

const (
	// FormatRGB stores pixels as R, G, B byte triples.
	FormatRGB PixelFormat = iota

	// FormatBGR stores pixels as B, G, R byte triples. This is the native
	// order of most capture backends.
	FormatBGR
)

// BytesPerPixel returns the storage size of one pixel. All supported formats
// are 3 bytes.
func (f PixelFormat) BytesPerPixel() int { return 3 }

// String returns a human-readable format name.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGB:
		return "RGB"
	case FormatBGR:
		return "BGR"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// channelOffsets returns the byte offsets of the red, green and blue channels
// within one pixel.
func (f PixelFormat) channelOffsets() (ri, gi, bi int) {
	if f == FormatBGR {
		return 2, 1, 0
	}
	return 0, 1, 2
}

// Frame is one decoded video frame: a tightly packed 24-bit pixel buffer with
// no row padding.
type Frame struct {
	// Data holds Width*Height*3 bytes in the channel order given by Format.
	Data []byte

	// Width is the frame width in pixels.
	Width int

	// Height is the frame height in pixels.
	Height int

	// Format is the channel order of Data.
	Format PixelFormat
}

// NewFrame allocates a zeroed frame of the given size.
func NewFrame(width, height int, format PixelFormat) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Frame{
		Data:   make([]byte, width*height*format.BytesPerPixel()),
		Width:  width,
		Height: height,
		Format: format,
	}, nil
}

// FrameFromRaw wraps an existing pixel buffer without copying it. The caller
// must not write to data while the frame is in use.
func FrameFromRaw(data []byte, width, height int, format PixelFormat) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if want := width * height * format.BytesPerPixel(); len(data) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d for %dx%d %s",
			ErrBufferSize, len(data), want, width, height, format)
	}
	return &Frame{Data: data, Width: width, Height: height, Format: format}, nil
}

// Clone returns a deep copy with its own pixel buffer.
func (f *Frame) Clone() *Frame {
	data := make([]byte, len(f.Data))
	copy(data, f.Data)
	return &Frame{Data: data, Width: f.Width, Height: f.Height, Format: f.Format}
}

// PixelOffset returns the byte offset of the pixel at (x, y). Coordinates are
// not bounds checked.
func (f *Frame) PixelOffset(x, y int) int {
	return (y*f.Width + x) * 3
}

// RGBAt returns the red, green and blue values of the pixel at (x, y)
// regardless of the underlying channel order.
func (f *Frame) RGBAt(x, y int) (r, g, b uint8) {
	ri, gi, bi := f.Format.channelOffsets()
	off := f.PixelOffset(x, y)
	return f.Data[off+ri], f.Data[off+gi], f.Data[off+bi]
}

// SetRGB writes the pixel at (x, y) from red, green and blue values,
// converting to the frame's channel order.
func (f *Frame) SetRGB(x, y int, r, g, b uint8) {
	ri, gi, bi := f.Format.channelOffsets()
	off := f.PixelOffset(x, y)
	f.Data[off+ri], f.Data[off+gi], f.Data[off+bi] = r, g, b
}

// Mask is a single-channel binary image. Pixels are either 0 (background) or
// 255 (wall).
type Mask struct {
	// Data holds Width*Height bytes, one per pixel.
	Data []byte

	// Width is the mask width in pixels.
	Width int

	// Height is the mask height in pixels.
	Height int
}

// NewMask allocates an all-zero mask of the given size.
func NewMask(width, height int) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Mask{Data: make([]byte, width*height), Width: width, Height: height}, nil
}

// Clone returns a deep copy with its own buffer.
func (m *Mask) Clone() *Mask {
	data := make([]byte, len(m.Data))
	copy(data, m.Data)
	return &Mask{Data: data, Width: m.Width, Height: m.Height}
}

// At returns the mask value at (x, y). Coordinates are not bounds checked.
func (m *Mask) At(x, y int) byte { return m.Data[y*m.Width+x] }

// Set marks the pixel at (x, y) as wall.
func (m *Mask) Set(x, y int) { m.Data[y*m.Width+x] = 255 }

// Coverage returns the fraction of mask pixels that are set, in [0, 1].
func (m *Mask) Coverage() float64 {
	if len(m.Data) == 0 {
		return 0
	}
	set := 0
	for _, v := range m.Data {
		if v != 0 {
			set++
		}
	}
	return float64(set) / float64(len(m.Data))
}
