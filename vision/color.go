package vision

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is one 24-bit color stored in a frame's native channel order. A Color
// parsed or built for FormatBGR holds blue in index 0 and red in index 2.
type Color [3]uint8

// ColorRGB builds a Color from red, green and blue components in the channel
// order of the given format.
func ColorRGB(r, g, b uint8, format PixelFormat) Color {
	var c Color
	ri, gi, bi := format.channelOffsets()
	c[ri], c[gi], c[bi] = r, g, b
	return c
}

// RGB returns the red, green and blue components of a Color stored in the
// given format.
func (c Color) RGB(format PixelFormat) (r, g, b uint8) {
	ri, gi, bi := format.channelOffsets()
	return c[ri], c[gi], c[bi]
}

// Hex formats a Color stored in the given format as an uppercase "#RRGGBB"
// string.
func (c Color) Hex(format PixelFormat) string {
	r, g, b := c.RGB(format)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// ParseHex parses a hex color string into a Color in the given format's
// channel order. The string must be exactly six hex digits, case-insensitive,
// with one optional leading '#'. Anything else returns ErrInvalidColorFormat.
func ParseHex(s string, format PixelFormat) (Color, error) {
	trimmed := strings.TrimPrefix(s, "#")
	if len(trimmed) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, s)
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(trimmed[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, s)
		}
		rgb[i] = uint8(v)
	}
	return ColorRGB(rgb[0], rgb[1], rgb[2], format), nil
}
