package sink

import (
	"bytes"
	"image"
	"strings"
	"testing"
)

// TestWriteContoursSVGPolygons verifies each contour becomes a stroked
// polygon with no fill.
func TestWriteContoursSVGPolygons(t *testing.T) {
	contours := [][]image.Point{
		{{X: 2, Y: 2}, {X: 10, Y: 2}, {X: 10, Y: 8}, {X: 2, Y: 8}},
		{{X: 20, Y: 20}, {X: 24, Y: 20}, {X: 24, Y: 24}},
	}

	var buf bytes.Buffer
	if err := WriteContoursSVG(&buf, 32, 32, contours, "#00FF00", 2); err != nil {
		t.Fatalf("WriteContoursSVG: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Errorf("output missing svg element:\n%s", out)
	}
	if got := strings.Count(out, "<polygon"); got != 2 {
		t.Errorf("polygon count = %d, want 2:\n%s", got, out)
	}
	if !strings.Contains(out, "fill:none") || !strings.Contains(out, "stroke:#00FF00") {
		t.Errorf("polygon style missing stroke or fill rule:\n%s", out)
	}
}

// TestWriteContoursSVGDefaults verifies empty style inputs fall back to a
// green 2px stroke.
func TestWriteContoursSVGDefaults(t *testing.T) {
	contours := [][]image.Point{{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 3}}}

	var buf bytes.Buffer
	if err := WriteContoursSVG(&buf, 8, 8, contours, "", 0); err != nil {
		t.Fatalf("WriteContoursSVG: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "stroke:#00FF00") || !strings.Contains(out, "stroke-width:2") {
		t.Errorf("defaults not applied:\n%s", out)
	}
}

// TestWriteContoursSVGEmpty verifies no contours still produce a valid
// document.
func TestWriteContoursSVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteContoursSVG(&buf, 16, 16, nil, "", 0); err != nil {
		t.Fatalf("WriteContoursSVG: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Errorf("empty document malformed:\n%s", out)
	}
	if strings.Contains(out, "<polygon") {
		t.Errorf("unexpected polygon in empty export:\n%s", out)
	}
}

// TestWriteContoursSVGBadDimensions verifies invalid canvas sizes are
// rejected.
func TestWriteContoursSVGBadDimensions(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteContoursSVG(&buf, 0, 16, nil, "", 0); err == nil {
		t.Error("WriteContoursSVG accepted zero width")
	}
}
