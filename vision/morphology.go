package vision

// Binary morphology on 0/255 planes with an all-ones square kernel. A square
// kernel is separable, so dilation and erosion each run as a horizontal pass
// followed by a vertical pass. Pixels outside the plane are not part of any
// window: dilation treats them as background, erosion ignores them.

// dilatePlane sets every pixel that has at least one set pixel within the
// kernel window.
func dilatePlane(src []byte, w, h, kernel int) []byte {
	r := kernel / 2
	if r == 0 {
		out := make([]byte, len(src))
		copy(out, src)
		return out
	}
	tmp := make([]byte, len(src))
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			lo, hi := max(x-r, 0), min(x+r, w-1)
			for i := lo; i <= hi; i++ {
				if src[row+i] != 0 {
					tmp[row+x] = 255
					break
				}
			}
		}
	}
	out := make([]byte, len(src))
	for y := 0; y < h; y++ {
		lo, hi := max(y-r, 0), min(y+r, h-1)
		for x := 0; x < w; x++ {
			for i := lo; i <= hi; i++ {
				if tmp[i*w+x] != 0 {
					out[y*w+x] = 255
					break
				}
			}
		}
	}
	return out
}

// erodePlane keeps a pixel only if every in-frame pixel within the kernel
// window is set.
func erodePlane(src []byte, w, h, kernel int) []byte {
	r := kernel / 2
	if r == 0 {
		out := make([]byte, len(src))
		copy(out, src)
		return out
	}
	tmp := make([]byte, len(src))
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			lo, hi := max(x-r, 0), min(x+r, w-1)
			keep := byte(255)
			for i := lo; i <= hi; i++ {
				if src[row+i] == 0 {
					keep = 0
					break
				}
			}
			tmp[row+x] = keep
		}
	}
	out := make([]byte, len(src))
	for y := 0; y < h; y++ {
		lo, hi := max(y-r, 0), min(y+r, h-1)
		for x := 0; x < w; x++ {
			keep := byte(255)
			for i := lo; i <= hi; i++ {
				if tmp[i*w+x] == 0 {
					keep = 0
					break
				}
			}
			out[y*w+x] = keep
		}
	}
	return out
}

// morphClose fills small holes: dilate then erode.
func morphClose(src []byte, w, h, kernel int) []byte {
	return erodePlane(dilatePlane(src, w, h, kernel), w, h, kernel)
}

// morphOpen removes small specks: erode then dilate.
func morphOpen(src []byte, w, h, kernel int) []byte {
	return dilatePlane(erodePlane(src, w, h, kernel), w, h, kernel)
}
