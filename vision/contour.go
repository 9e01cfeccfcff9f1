package vision

import "image"

// moore lists the 8-neighborhood in clockwise order starting east, with image
// y growing downward.
var moore = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// mooreIndex maps a neighbor delta (dx, dy) back to its position in moore,
// indexed as [dy+1][dx+1].
var mooreIndex = [3][3]int{
	{5, 6, 7},
	{4, -1, 0},
	{3, 2, 1},
}

// OuterContours traces the outer boundary of every wall region in the mask,
// walking each boundary clockwise. Only contours reachable from the image
// border count as outer: hole boundaries are never traced, and regions nested
// inside a hole of another region are skipped entirely.
func OuterContours(m *Mask) [][]image.Point {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return nil
	}
	w, h := m.Width, m.Height
	outside := outsideBackground(m)

	var contours [][]image.Point
	visited := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if m.Data[i] == 0 || visited[i] {
				continue
			}
			// Start a trace only when entering a region from outside
			// background (or the frame edge) on the left. A run
			// continuation or a hole on the left is not an outer entry.
			if x > 0 && (m.Data[i-1] != 0 || !outside[i-1]) {
				continue
			}
			contours = append(contours, traceBoundary(m, visited, x, y))
		}
	}
	return contours
}

// traceBoundary walks one outer boundary clockwise from its entry pixel using
// Moore neighbor tracing, marking every contour pixel visited. The walk stops
// when it would re-enter the start pixel from the original backtrack
// position.
func traceBoundary(m *Mask, visited []bool, sx, sy int) []image.Point {
	w, h := m.Width, m.Height
	start := image.Point{X: sx, Y: sy}
	startB := image.Point{X: sx - 1, Y: sy}

	contour := []image.Point{start}
	visited[sy*w+sx] = true

	cur, back := start, startB
	for steps := 0; steps < 4*w*h+8; steps++ {
		bIdx := mooreIndex[back.Y-cur.Y+1][back.X-cur.X+1]
		var next, nextBack image.Point
		found := false
		prev := back
		for i := 1; i <= 8; i++ {
			d := moore[(bIdx+i)%8]
			n := image.Point{X: cur.X + d.X, Y: cur.Y + d.Y}
			if n.X >= 0 && n.X < w && n.Y >= 0 && n.Y < h && m.Data[n.Y*w+n.X] != 0 {
				next, nextBack = n, prev
				found = true
				break
			}
			prev = n
		}
		if !found {
			break // isolated pixel
		}
		if next == start && nextBack == startB {
			break
		}
		cur, back = next, nextBack
		contour = append(contour, cur)
		visited[cur.Y*w+cur.X] = true
	}
	return contour
}

// outsideBackground flood fills the zero pixels reachable from the image
// border with 4-connectivity. Zero pixels left unmarked belong to holes.
func outsideBackground(m *Mask) []bool {
	w, h := m.Width, m.Height
	out := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))
	push := func(i int) {
		if m.Data[i] == 0 && !out[i] {
			out[i] = true
			queue = append(queue, i)
		}
	}
	for x := 0; x < w; x++ {
		push(x)
		push((h-1)*w + x)
	}
	for y := 0; y < h; y++ {
		push(y * w)
		push(y*w + w - 1)
	}
	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%w, i/w
		if x > 0 {
			push(i - 1)
		}
		if x < w-1 {
			push(i + 1)
		}
		if y > 0 {
			push(i - w)
		}
		if y < h-1 {
			push(i + w)
		}
	}
	return out
}

// drawContours stamps each contour point as a thickness x thickness block of
// the given color, clipped to the frame. Even thickness extends right and
// down from the point; odd thickness centers on it.
func drawContours(f *Frame, contours [][]image.Point, c Color, thickness int) {
	if thickness <= 0 {
		return
	}
	start := -(thickness - 1) / 2
	for _, contour := range contours {
		for _, p := range contour {
			for dy := 0; dy < thickness; dy++ {
				y := p.Y + start + dy
				if y < 0 || y >= f.Height {
					continue
				}
				for dx := 0; dx < thickness; dx++ {
					x := p.X + start + dx
					if x < 0 || x >= f.Width {
						continue
					}
					off := f.PixelOffset(x, y)
					f.Data[off] = c[0]
					f.Data[off+1] = c[1]
					f.Data[off+2] = c[2]
				}
			}
		}
	}
}
