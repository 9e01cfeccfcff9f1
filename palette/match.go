package palette

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

// Nearest returns the catalog entry perceptually closest to the given hex
// color and its CIE Lab distance. A malformed hex string returns
// vision.ErrInvalidColorFormat.
func Nearest(hex string) (Entry, float64, error) {
	c, err := vision.ParseHex(hex, vision.FormatRGB)
	if err != nil {
		return Entry{}, 0, err
	}
	target := toColorful(c)

	best := catalog[0]
	bestDist := -1.0
	for _, e := range catalog {
		ec, err := vision.ParseHex(e.Hex, vision.FormatRGB)
		if err != nil {
			continue
		}
		if d := target.DistanceLab(toColorful(ec)); bestDist < 0 || d < bestDist {
			best, bestDist = e, d
		}
	}
	return best, bestDist, nil
}

func toColorful(c vision.Color) colorful.Color {
	r, g, b := c.RGB(vision.FormatRGB)
	return colorful.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
	}
}
