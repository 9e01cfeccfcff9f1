package vision

import (
	"bytes"
	"errors"
	"math"
	"sync"
	"testing"
)

// TestNewPipelineValidation verifies bad alpha, thickness and segmenter
// settings are rejected at construction.
func TestNewPipelineValidation(t *testing.T) {
	bad := DefaultPipelineConfig(FormatRGB)
	bad.Alpha = 1.5
	if _, err := NewPipeline(bad); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("alpha 1.5 should fail, got %v", err)
	}

	bad = DefaultPipelineConfig(FormatRGB)
	bad.Alpha = math.NaN()
	if _, err := NewPipeline(bad); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("NaN alpha should fail, got %v", err)
	}

	bad = DefaultPipelineConfig(FormatRGB)
	bad.OutlineThickness = -1
	if _, err := NewPipeline(bad); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative thickness should fail, got %v", err)
	}

	bad = DefaultPipelineConfig(FormatRGB)
	bad.Segmenter.KernelSize = 2
	if _, err := NewPipeline(bad); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("even kernel should fail, got %v", err)
	}

	if _, err := NewPipeline(DefaultPipelineConfig(FormatBGR)); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

// TestProcessAllBlackIdentity verifies a frame with no detectable wall comes
// back bit-identical.
func TestProcessAllBlackIdentity(t *testing.T) {
	pipe, err := NewPipeline(DefaultPipelineConfig(FormatRGB))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	state := NewState(FormatRGB)

	f, err := NewFrame(4, 4, FormatRGB)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	out, err := pipe.Process(f, state)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !bytes.Equal(out.Data, f.Data) {
		t.Errorf("all-black frame should pass through unchanged")
	}
	if &out.Data[0] == &f.Data[0] {
		t.Errorf("output must not alias the input buffer")
	}
}

// TestProcessBlendsAndOutlines verifies a uniform bright frame is repainted
// in the interior and outlined at the frame edge.
func TestProcessBlendsAndOutlines(t *testing.T) {
	pipe, err := NewPipeline(DefaultPipelineConfig(FormatRGB))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	state := NewState(FormatRGB)
	if err := state.SetHex("#FF7F50"); err != nil {
		t.Fatalf("SetHex failed: %v", err)
	}

	f, err := NewFrame(16, 16, FormatRGB)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			f.SetRGB(x, y, 200, 200, 200)
		}
	}

	res, err := pipe.ProcessFull(f, state)
	if err != nil {
		t.Fatalf("ProcessFull failed: %v", err)
	}
	if res.Mask.Coverage() != 1 {
		t.Fatalf("uniform bright frame should mask fully, coverage %v", res.Mask.Coverage())
	}
	if len(res.Contours) != 1 {
		t.Fatalf("expected one full-frame contour, got %d", len(res.Contours))
	}

	// Frame corner carries the outline.
	if r, g, b := res.Output.RGBAt(0, 0); r != 0 || g != 255 || b != 0 {
		t.Errorf("corner should be outline green, got (%d %d %d)", r, g, b)
	}

	// Interior carries the blend: 0.3*200 + 0.7*paint per channel.
	wantR := math.Round(0.3*200 + 0.7*255)
	wantG := math.Round(0.3*200 + 0.7*127)
	wantB := math.Round(0.3*200 + 0.7*80)
	r, g, b := res.Output.RGBAt(8, 8)
	if math.Abs(float64(r)-wantR) > 1 || math.Abs(float64(g)-wantG) > 1 || math.Abs(float64(b)-wantB) > 1 {
		t.Errorf("interior blend (%d %d %d) not within 1 of (%v %v %v)", r, g, b, wantR, wantG, wantB)
	}
}

// TestProcessLeavesInputAlone verifies Process never writes to the input
// frame or the state.
func TestProcessLeavesInputAlone(t *testing.T) {
	pipe, err := NewPipeline(DefaultPipelineConfig(FormatRGB))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	state := NewState(FormatRGB)
	if err := state.SetHex("#98FF98"); err != nil {
		t.Fatalf("SetHex failed: %v", err)
	}
	colorBefore := state.Color()

	f := roomFrame(t, 32, 32, 10, 10, 22, 22, FormatRGB)
	before := make([]byte, len(f.Data))
	copy(before, f.Data)

	if _, err := pipe.Process(f, state); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !bytes.Equal(f.Data, before) {
		t.Errorf("input frame was modified")
	}
	if state.Color() != colorBefore {
		t.Errorf("state was modified")
	}
}

// TestProcessFormatChecks verifies frames and states in the wrong channel
// order are rejected.
func TestProcessFormatChecks(t *testing.T) {
	pipe, err := NewPipeline(DefaultPipelineConfig(FormatRGB))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	bgrFrame, err := NewFrame(4, 4, FormatBGR)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	if _, err := pipe.Process(bgrFrame, NewState(FormatRGB)); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("BGR frame into RGB pipeline should fail, got %v", err)
	}

	rgbFrame, err := NewFrame(4, 4, FormatRGB)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	if _, err := pipe.Process(rgbFrame, NewState(FormatBGR)); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("BGR state into RGB pipeline should fail, got %v", err)
	}
	if _, err := pipe.Process(rgbFrame, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("nil state should fail, got %v", err)
	}
}

// TestProcessConcurrent verifies one pipeline serves parallel Process calls
// with identical results.
func TestProcessConcurrent(t *testing.T) {
	pipe, err := NewPipeline(DefaultPipelineConfig(FormatRGB))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	state := NewState(FormatRGB)
	if err := state.SetHex("#87CEEB"); err != nil {
		t.Fatalf("SetHex failed: %v", err)
	}

	f := roomFrame(t, 48, 48, 16, 16, 32, 32, FormatRGB)
	want, err := pipe.Process(f, state)
	if err != nil {
		t.Fatalf("sequential Process failed: %v", err)
	}

	var wg sync.WaitGroup
	outputs := make([]*Frame, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outputs[i], errs[i] = pipe.Process(f.Clone(), state)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d failed: %v", i, errs[i])
		}
		if !bytes.Equal(outputs[i].Data, want.Data) {
			t.Errorf("worker %d output differs from sequential result", i)
		}
	}
}

// BenchmarkProcess measures the full pipeline on a VGA frame.
func BenchmarkProcess(b *testing.B) {
	pipe, err := NewPipeline(DefaultPipelineConfig(FormatRGB))
	if err != nil {
		b.Fatalf("NewPipeline failed: %v", err)
	}
	state := NewState(FormatRGB)
	if err := state.SetHex("#87CEEB"); err != nil {
		b.Fatalf("SetHex failed: %v", err)
	}
	f := roomFrame(b, 640, 480, 200, 160, 440, 320, FormatRGB)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := pipe.Process(f, state); err != nil {
			b.Fatalf("Process failed: %v", err)
		}
	}
}

// BenchmarkComposite measures blending alone on a VGA frame with a full
// mask.
func BenchmarkComposite(b *testing.B) {
	f := roomFrame(b, 640, 480, 200, 160, 440, 320, FormatRGB)
	m, err := NewMask(640, 480)
	if err != nil {
		b.Fatalf("NewMask failed: %v", err)
	}
	for i := range m.Data {
		m.Data[i] = 255
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Composite(f, m, Color{135, 206, 235}, 0.7); err != nil {
			b.Fatalf("Composite failed: %v", err)
		}
	}
}
