// Package vision implements the per-frame wall repainting pipeline.
//
// # Overview
//
// The pipeline turns one camera frame into an annotated preview of the same
// scene with the wall repainted in a selected color. It is a linear, pure
// transform:
//
//	frame -> mask (Segmenter) -> blended frame (Composite) -> outlined frame
//
// Segmentation is heuristic, not learned: walls are assumed to be bright,
// visually uniform regions away from strong edges. The compositor alpha-blends
// the selected paint color into masked pixels so shading and texture of the
// real surface survive the repaint.
//
// # Basic Usage
//
// Create a pipeline and a color state, then process frames:
//
//	pipe, err := vision.NewPipeline(vision.DefaultPipelineConfig(vision.FormatRGB))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	state := vision.NewState(vision.FormatRGB)
//	state.SetHex("#87CEEB") // Sky Blue
//
//	for frame := range source {
//	    out, err := pipe.Process(frame, state)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    sink(out)
//	}
//
// # Purity and Concurrency
//
// Every operation is a single deterministic pass with no I/O and no retries.
// Input frames are never mutated; each call allocates fresh output buffers, so
// results can be handed to other goroutines without synchronization. The only
// mutable state is the selected color inside State, which is read as one
// atomic snapshot per Process call and written with an atomic swap. A single
// Pipeline value is safe for concurrent Process calls against different
// frames.
//
// # Tunables
//
// SegmenterConfig and PipelineConfig expose every threshold the pipeline uses:
// edge hysteresis low/high, brightness cutoff, morphology kernel size, blend
// alpha, and the debug outline. Defaults match the values the heuristic was
// tuned with (50/150, 100, 5x5, 0.7). Configs are validated at construction;
// out-of-range values fail fast instead of being clamped.
package vision
