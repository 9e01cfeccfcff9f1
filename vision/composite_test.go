package vision

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func gradientFrame(t *testing.T, w, h int, format PixelFormat) *Frame {
	t.Helper()
	f, err := NewFrame(w, h, format)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.SetRGB(x, y, uint8(x*37), uint8(y*53), uint8((x+y)*11))
		}
	}
	return f
}

func checkerMask(t *testing.T, w, h int) *Mask {
	t.Helper()
	m, err := NewMask(w, h)
	if err != nil {
		t.Fatalf("NewMask failed: %v", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				m.Set(x, y)
			}
		}
	}
	return m
}

// TestCompositeRejectsBadAlpha verifies alpha outside [0, 1] and NaN fail
// with ErrInvalidParameter instead of being clamped.
func TestCompositeRejectsBadAlpha(t *testing.T) {
	f := gradientFrame(t, 4, 4, FormatRGB)
	m := checkerMask(t, 4, 4)
	for _, alpha := range []float64{-0.01, 1.01, 2, -5, math.NaN()} {
		if _, err := Composite(f, m, Color{1, 2, 3}, alpha); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("alpha %v should fail with ErrInvalidParameter, got %v", alpha, err)
		}
	}
}

// TestCompositeRejectsDimensionMismatch verifies frame and mask sizes must
// agree.
func TestCompositeRejectsDimensionMismatch(t *testing.T) {
	f := gradientFrame(t, 4, 4, FormatRGB)
	m := checkerMask(t, 4, 5)
	if _, err := Composite(f, m, Color{1, 2, 3}, 0.5); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

// TestCompositeAlphaZeroIdentity verifies alpha 0 returns a bit-identical
// copy.
func TestCompositeAlphaZeroIdentity(t *testing.T) {
	f := gradientFrame(t, 6, 4, FormatRGB)
	m := checkerMask(t, 6, 4)
	out, err := Composite(f, m, Color{200, 10, 10}, 0)
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	if !bytes.Equal(out.Data, f.Data) {
		t.Errorf("alpha 0 should be the identity")
	}
}

// TestCompositeAlphaOneSolid verifies alpha 1 paints masked pixels with the
// exact color.
func TestCompositeAlphaOneSolid(t *testing.T) {
	f := gradientFrame(t, 6, 4, FormatRGB)
	m := checkerMask(t, 6, 4)
	paint := Color{200, 10, 10}
	out, err := Composite(f, m, paint, 1)
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			off := out.PixelOffset(x, y)
			got := Color{out.Data[off], out.Data[off+1], out.Data[off+2]}
			if m.At(x, y) != 0 && got != paint {
				t.Errorf("masked pixel (%d,%d) = %v, want %v", x, y, got, paint)
			}
		}
	}
}

// TestCompositeUnmaskedUntouched verifies unmasked pixels survive bit for
// bit at any alpha.
func TestCompositeUnmaskedUntouched(t *testing.T) {
	f := gradientFrame(t, 6, 4, FormatBGR)
	m := checkerMask(t, 6, 4)
	out, err := Composite(f, m, Color{80, 127, 255}, 0.7)
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			if m.At(x, y) != 0 {
				continue
			}
			off := f.PixelOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				if out.Data[off+ch] != f.Data[off+ch] {
					t.Errorf("unmasked pixel (%d,%d) channel %d changed", x, y, ch)
				}
			}
		}
	}
}

// TestCompositeBlendFormula verifies masked channels track the weighted
// average within one unit of rounding.
func TestCompositeBlendFormula(t *testing.T) {
	f := gradientFrame(t, 8, 8, FormatRGB)
	m := checkerMask(t, 8, 8)
	paint := Color{220, 248, 255}
	for _, alpha := range []float64{0.25, 0.5, 0.7, 0.9} {
		out, err := Composite(f, m, paint, alpha)
		if err != nil {
			t.Fatalf("Composite alpha %v failed: %v", alpha, err)
		}
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				if m.At(x, y) == 0 {
					continue
				}
				off := f.PixelOffset(x, y)
				for ch := 0; ch < 3; ch++ {
					want := math.Round((1-alpha)*float64(f.Data[off+ch]) + alpha*float64(paint[ch]))
					if diff := math.Abs(float64(out.Data[off+ch]) - want); diff > 1 {
						t.Fatalf("alpha %v pixel (%d,%d) ch %d: got %d, want %v",
							alpha, x, y, ch, out.Data[off+ch], want)
					}
				}
			}
		}
	}
}

// TestCompositeFreshBuffer verifies the output never aliases the input
// buffer.
func TestCompositeFreshBuffer(t *testing.T) {
	f := gradientFrame(t, 4, 4, FormatRGB)
	m := checkerMask(t, 4, 4)
	before := make([]byte, len(f.Data))
	copy(before, f.Data)

	out, err := Composite(f, m, Color{5, 5, 5}, 0.5)
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	for i := range out.Data {
		out.Data[i] = 0xAB
	}
	if !bytes.Equal(f.Data, before) {
		t.Errorf("input frame changed after writing to output")
	}
}
