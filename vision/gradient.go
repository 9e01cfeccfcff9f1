package vision

// Slope cutoffs for quantizing gradient direction into four sectors, at
// 22.5 and 67.5 degrees.
const (
	tanPi8  = 0.41421356
	tan3Pi8 = 2.41421356
)

// lumaPlane converts a packed color frame to an 8-bit luminance plane using
// the BT.601 weights (0.299, 0.587, 0.114) with integer rounding.
func lumaPlane(f *Frame) []byte {
	ri, gi, bi := f.Format.channelOffsets()
	out := make([]byte, f.Width*f.Height)
	for i := range out {
		off := i * 3
		r := uint32(f.Data[off+ri])
		g := uint32(f.Data[off+gi])
		b := uint32(f.Data[off+bi])
		out[i] = uint8((299*r + 587*g + 114*b + 500) / 1000)
	}
	return out
}

// reflectIndex mirrors an out-of-range coordinate back into [0, n) without
// repeating the border pixel, so gradients stay unbiased at the frame edge.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	if i < 0 {
		return -i
	}
	if i >= n {
		return 2*n - 2 - i
	}
	return i
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// magAt returns the gradient magnitude at (x, y), or 0 outside the plane.
func magAt(mag []int32, w, h, x, y int) int32 {
	if x < 0 || x >= w || y < 0 || y >= h {
		return 0
	}
	return mag[y*w+x]
}

// detectEdges runs gradient edge detection on a luminance plane and returns a
// binary 0/255 edge map.
//
// Stages: 3x3 Sobel gradients with mirrored borders, L1 magnitude, thinning
// by non-maximum suppression along the gradient direction, then two-level
// hysteresis. Magnitudes at or above high seed edges; pixels at or above low
// join an edge when 8-connected to a seed. Everything below low is discarded.
func detectEdges(gray []byte, w, h int, low, high uint8) []byte {
	n := w * h
	gx := make([]int32, n)
	gy := make([]int32, n)
	mag := make([]int32, n)

	for y := 0; y < h; y++ {
		ym := reflectIndex(y-1, h) * w
		y0 := y * w
		yp := reflectIndex(y+1, h) * w
		for x := 0; x < w; x++ {
			xm := reflectIndex(x-1, w)
			xp := reflectIndex(x+1, w)
			tl := int32(gray[ym+xm])
			tc := int32(gray[ym+x])
			tr := int32(gray[ym+xp])
			ml := int32(gray[y0+xm])
			mr := int32(gray[y0+xp])
			bl := int32(gray[yp+xm])
			bc := int32(gray[yp+x])
			br := int32(gray[yp+xp])

			dx := (tr + 2*mr + br) - (tl + 2*ml + bl)
			dy := (bl + 2*bc + br) - (tl + 2*tc + tr)

			i := y0 + x
			gx[i], gy[i] = dx, dy
			mag[i] = absInt32(dx) + absInt32(dy)
		}
	}

	// Non-maximum suppression: keep a pixel only if its magnitude is not
	// beaten by either neighbor along the gradient direction.
	thin := make([]int32, n)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m == 0 {
				continue
			}
			ax := float64(absInt32(gx[i]))
			ay := float64(absInt32(gy[i]))
			var n1, n2 int32
			switch {
			case ay <= ax*tanPi8:
				n1 = magAt(mag, w, h, x-1, y)
				n2 = magAt(mag, w, h, x+1, y)
			case ay >= ax*tan3Pi8:
				n1 = magAt(mag, w, h, x, y-1)
				n2 = magAt(mag, w, h, x, y+1)
			case (gx[i] > 0) == (gy[i] > 0):
				n1 = magAt(mag, w, h, x-1, y-1)
				n2 = magAt(mag, w, h, x+1, y+1)
			default:
				n1 = magAt(mag, w, h, x+1, y-1)
				n2 = magAt(mag, w, h, x-1, y+1)
			}
			if m >= n1 && m >= n2 {
				thin[i] = m
			}
		}
	}

	// Hysteresis: flood from strong seeds through weak pixels.
	out := make([]byte, n)
	lo, hi := int32(low), int32(high)
	stack := make([]int, 0, 128)
	for i := 0; i < n; i++ {
		if thin[i] < hi || out[i] != 0 {
			continue
		}
		out[i] = 255
		stack = append(stack[:0], i)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			px, py := p%w, p/w
			for dy := -1; dy <= 1; dy++ {
				ny := py + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := px + dx
					if nx < 0 || nx >= w || (dx == 0 && dy == 0) {
						continue
					}
					q := ny*w + nx
					if out[q] == 0 && thin[q] >= lo {
						out[q] = 255
						stack = append(stack, q)
					}
				}
			}
		}
	}
	return out
}
