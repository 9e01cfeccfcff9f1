package sink

import (
	"fmt"
	"image"
	"io"

	svg "github.com/ajstarks/svgo"
)

// WriteContoursSVG writes wall outline contours as closed polygons with a
// stroked edge and no fill. Empty stroke and thickness fall back to a green
// 2px line. No contours still produce a valid empty document.
func WriteContoursSVG(w io.Writer, width, height int, contours [][]image.Point, stroke string, thickness int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if stroke == "" {
		stroke = "#00FF00"
	}
	if thickness <= 0 {
		thickness = 2
	}

	canvas := svg.New(w)
	canvas.Start(width, height)
	style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%d", stroke, thickness)
	for _, contour := range contours {
		if len(contour) == 0 {
			continue
		}
		xs := make([]int, len(contour))
		ys := make([]int, len(contour))
		for i, p := range contour {
			xs[i], ys[i] = p.X, p.Y
		}
		canvas.Polygon(xs, ys, style)
	}
	canvas.End()
	return nil
}
