package vision

import "fmt"

// Composite blends a paint color into the masked pixels of a frame and
// returns a new frame. Unmasked pixels are copied bit for bit, and the source
// frame is never written.
//
// Each masked channel becomes round((1-alpha)*original + alpha*paint). Alpha
// outside [0, 1], including NaN, returns ErrInvalidParameter; values are
// never clamped.
func Composite(f *Frame, m *Mask, c Color, alpha float64) (*Frame, error) {
	if f == nil || m == nil {
		return nil, fmt.Errorf("%w: nil frame or mask", ErrInvalidDimensions)
	}
	if !(alpha >= 0 && alpha <= 1) {
		return nil, fmt.Errorf("%w: alpha %v outside [0, 1]", ErrInvalidParameter, alpha)
	}
	if f.Width != m.Width || f.Height != m.Height {
		return nil, fmt.Errorf("%w: frame %dx%d vs mask %dx%d",
			ErrDimensionMismatch, f.Width, f.Height, m.Width, m.Height)
	}

	out := f.Clone()
	if alpha == 0 {
		return out, nil
	}
	if alpha == 1 {
		for i, v := range m.Data {
			if v == 0 {
				continue
			}
			off := i * 3
			out.Data[off] = c[0]
			out.Data[off+1] = c[1]
			out.Data[off+2] = c[2]
		}
		return out, nil
	}

	inv := 1 - alpha
	p0 := alpha*float64(c[0]) + 0.5
	p1 := alpha*float64(c[1]) + 0.5
	p2 := alpha*float64(c[2]) + 0.5
	for i, v := range m.Data {
		if v == 0 {
			continue
		}
		off := i * 3
		out.Data[off] = uint8(inv*float64(out.Data[off]) + p0)
		out.Data[off+1] = uint8(inv*float64(out.Data[off+1]) + p1)
		out.Data[off+2] = uint8(inv*float64(out.Data[off+2]) + p2)
	}
	return out, nil
}
