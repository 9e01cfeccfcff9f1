package vision

import (
	"bytes"
	"testing"
)

func planeFromRows(rows []string) ([]byte, int, int) {
	h := len(rows)
	w := len(rows[0])
	p := make([]byte, w*h)
	for y, row := range rows {
		for x := 0; x < w; x++ {
			if row[x] == 'X' {
				p[y*w+x] = 255
			}
		}
	}
	return p, w, h
}

// TestDilateSinglePixel verifies a lone pixel grows into a full kernel
// footprint.
func TestDilateSinglePixel(t *testing.T) {
	src, w, h := planeFromRows([]string{
		".....",
		".....",
		"..X..",
		".....",
		".....",
	})
	want, _, _ := planeFromRows([]string{
		".....",
		".XXX.",
		".XXX.",
		".XXX.",
		".....",
	})
	got := dilatePlane(src, w, h, 3)
	if !bytes.Equal(got, want) {
		t.Errorf("3x3 dilation of single pixel wrong:\ngot  %v\nwant %v", got, want)
	}
}

// TestErodeBlock verifies a 3x3 block erodes to its center under a 3x3
// kernel.
func TestErodeBlock(t *testing.T) {
	src, w, h := planeFromRows([]string{
		".....",
		".XXX.",
		".XXX.",
		".XXX.",
		".....",
	})
	want, _, _ := planeFromRows([]string{
		".....",
		".....",
		"..X..",
		".....",
		".....",
	})
	got := erodePlane(src, w, h, 3)
	if !bytes.Equal(got, want) {
		t.Errorf("3x3 erosion of block wrong:\ngot  %v\nwant %v", got, want)
	}
}

// TestErodeIgnoresOutside verifies a fully set plane survives erosion even
// when the kernel overhangs the border.
func TestErodeIgnoresOutside(t *testing.T) {
	src, w, h := planeFromRows([]string{
		"XXXX",
		"XXXX",
		"XXXX",
		"XXXX",
	})
	got := erodePlane(src, w, h, 5)
	if !bytes.Equal(got, src) {
		t.Errorf("full plane should survive erosion at the border, got %v", got)
	}
}

// TestCloseFillsHole verifies close repairs a one-pixel hole inside a block.
func TestCloseFillsHole(t *testing.T) {
	src, w, h := planeFromRows([]string{
		"XXXXX",
		"XXXXX",
		"XX.XX",
		"XXXXX",
		"XXXXX",
	})
	got := morphClose(src, w, h, 3)
	if got[2*w+2] == 0 {
		t.Errorf("close should fill the interior hole")
	}
}

// TestOpenRemovesSpeck verifies open deletes an isolated pixel and keeps a
// solid block.
func TestOpenRemovesSpeck(t *testing.T) {
	src, w, h := planeFromRows([]string{
		"X......",
		".......",
		"..XXX..",
		"..XXX..",
		"..XXX..",
		".......",
		".......",
	})
	got := morphOpen(src, w, h, 3)
	if got[0] != 0 {
		t.Errorf("open should remove the isolated speck")
	}
	if got[3*w+3] == 0 {
		t.Errorf("open should keep the solid block center")
	}
}

// TestKernelOneIsIdentity verifies a 1x1 kernel changes nothing.
func TestKernelOneIsIdentity(t *testing.T) {
	src, w, h := planeFromRows([]string{
		"X.X",
		".X.",
		"X.X",
	})
	if got := dilatePlane(src, w, h, 1); !bytes.Equal(got, src) {
		t.Errorf("1x1 dilation should be identity")
	}
	if got := erodePlane(src, w, h, 1); !bytes.Equal(got, src) {
		t.Errorf("1x1 erosion should be identity")
	}
}
