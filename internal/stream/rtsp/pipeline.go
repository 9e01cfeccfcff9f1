// Package rtsp wraps the GStreamer plumbing behind the RTSP capture source:
// pipeline construction, bus monitoring, reconnection with backoff, and the
// appsink callbacks that hand decoded frames to the capture layer.
package rtsp

import (
	"fmt"
	"log/slog"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// PipelineConfig describes the capture pipeline to build.
type PipelineConfig struct {
	// URL is the rtsp:// address of the camera.
	URL string

	// Width and Height are the output resolution; the camera stream is
	// scaled to fit.
	Width  int
	Height int

	// FPS is the output frame rate. Values below 1 are expressed as
	// fractional caps (for example 1/10 for one frame every ten seconds).
	FPS float64

	// Format is the raw output pixel layout, "RGB" or "BGR".
	Format string

	// Decoder selects the H.264 decoder: "auto" probes for VAAPI and falls
	// back to software, "vaapi" and "software" force one side.
	Decoder string

	// LatencyMS is the rtspsrc jitterbuffer length in milliseconds.
	LatencyMS int
}

// PipelineElements keeps references to the constructed elements so callers
// can attach callbacks, watch the bus and retune caps later.
type PipelineElements struct {
	Pipeline   *gst.Pipeline
	Source     *gst.Element
	Depay      *gst.Element
	Decoder    *gst.Element
	Convert    *gst.Element
	Scale      *gst.Element
	Rate       *gst.Element
	CapsFilter *gst.Element
	Sink       *app.Sink
}

// CreatePipeline builds the capture pipeline:
//
//	rtspsrc -> rtph264depay -> decoder -> videoconvert -> videoscale
//	        -> videorate -> capsfilter -> appsink
//
// rtspsrc exposes its pads dynamically, so the rtspsrc -> depay link is left
// to the pad-added callback; everything downstream is linked here.
func CreatePipeline(cfg PipelineConfig) (*PipelineElements, error) {
	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	source, err := gst.NewElement("rtspsrc")
	if err != nil {
		return nil, fmt.Errorf("failed to create rtspsrc: %w", err)
	}
	if err := source.SetProperty("location", cfg.URL); err != nil {
		return nil, fmt.Errorf("failed to set rtsp location: %w", err)
	}
	// TCP only. UDP loss shows up as smearing artifacts that segmentation
	// mistakes for edges.
	source.SetProperty("protocols", 4)
	latency := cfg.LatencyMS
	if latency <= 0 {
		latency = 200
	}
	source.SetProperty("latency", latency)
	source.SetProperty("buffer-mode", 3)
	source.SetProperty("ntp-sync", false)
	source.SetProperty("tcp-timeout", uint64(10_000_000))

	depay, err := gst.NewElement("rtph264depay")
	if err != nil {
		return nil, fmt.Errorf("failed to create rtph264depay: %w", err)
	}
	depay.SetProperty("request-keyframe", true)

	decoder, err := buildDecoder(cfg.Decoder)
	if err != nil {
		return nil, err
	}

	convert, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("failed to create videoconvert: %w", err)
	}
	convert.SetProperty("n-threads", uint(0))
	convert.SetProperty("dither", 0)

	scale, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, fmt.Errorf("failed to create videoscale: %w", err)
	}

	rate, err := gst.NewElement("videorate")
	if err != nil {
		return nil, fmt.Errorf("failed to create videorate: %w", err)
	}
	if cfg.FPS <= 2 {
		// Low rates only ever drop frames; never duplicate to fill gaps.
		rate.SetProperty("drop-only", true)
		rate.SetProperty("skip-to-first", true)
		rate.SetProperty("average-period", uint64(0))
	}

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("failed to create capsfilter: %w", err)
	}
	caps := gst.NewCapsFromString(buildFramerateCaps(cfg.Width, cfg.Height, cfg.FPS, cfg.Format))
	if err := capsfilter.SetProperty("caps", caps); err != nil {
		return nil, fmt.Errorf("failed to set caps: %w", err)
	}

	sink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("failed to create appsink: %w", err)
	}
	sink.SetProperty("sync", false)
	sink.SetProperty("max-buffers", uint(1))
	sink.SetProperty("drop", true)
	sink.SetProperty("qos", true)

	if err := pipeline.AddMany(source, depay, decoder, convert, scale, rate, capsfilter, sink.Element); err != nil {
		return nil, fmt.Errorf("failed to add elements to pipeline: %w", err)
	}
	if err := gst.ElementLinkMany(depay, decoder, convert, scale, rate, capsfilter, sink.Element); err != nil {
		return nil, fmt.Errorf("failed to link pipeline elements: %w", err)
	}

	slog.Debug("rtsp: pipeline created",
		"url", cfg.URL,
		"caps", buildFramerateCaps(cfg.Width, cfg.Height, cfg.FPS, cfg.Format),
		"decoder", cfg.Decoder,
	)

	return &PipelineElements{
		Pipeline:   pipeline,
		Source:     source,
		Depay:      depay,
		Decoder:    decoder,
		Convert:    convert,
		Scale:      scale,
		Rate:       rate,
		CapsFilter: capsfilter,
		Sink:       sink,
	}, nil
}

// buildDecoder picks the H.264 decoder element. "auto" tries VAAPI first and
// falls back to software decode.
func buildDecoder(kind string) (*gst.Element, error) {
	if kind == "vaapi" || kind == "auto" {
		if dec, err := gst.NewElement("vaapih264dec"); err == nil {
			dec.SetProperty("low-latency", true)
			if kind == "auto" {
				slog.Debug("rtsp: using vaapi decoder")
			}
			return dec, nil
		}
		if kind == "vaapi" {
			return nil, fmt.Errorf("vaapih264dec not available")
		}
		slog.Debug("rtsp: vaapi not available, falling back to software decode")
	}

	dec, err := gst.NewElement("avdec_h264")
	if err != nil {
		return nil, fmt.Errorf("failed to create avdec_h264: %w", err)
	}
	dec.SetProperty("max-threads", 0)
	dec.SetProperty("output-corrupt", false)
	return dec, nil
}

// UpdateFramerateCaps retunes the capsfilter on a running pipeline. The
// change takes effect on the next negotiated buffer; callers handle rollback
// if the new caps fail.
func UpdateFramerateCaps(elems *PipelineElements, cfg PipelineConfig, fps float64) error {
	if elems == nil || elems.CapsFilter == nil {
		return fmt.Errorf("pipeline not initialized")
	}
	capsStr := buildFramerateCaps(cfg.Width, cfg.Height, fps, cfg.Format)
	if err := elems.CapsFilter.SetProperty("caps", gst.NewCapsFromString(capsStr)); err != nil {
		return fmt.Errorf("failed to update caps to %q: %w", capsStr, err)
	}
	slog.Info("rtsp: framerate caps updated", "caps", capsStr)
	return nil
}

// DestroyPipeline drops the pipeline to NULL and releases its resources.
func DestroyPipeline(elems *PipelineElements) {
	if elems == nil || elems.Pipeline == nil {
		return
	}
	if err := elems.Pipeline.SetState(gst.StateNull); err != nil {
		slog.Warn("rtsp: failed to set pipeline to null", "error", err)
	}
}

// buildFramerateCaps renders the capsfilter string. Rates below one frame
// per second become fractions with numerator one, so 0.1 fps is 1/10.
func buildFramerateCaps(width, height int, fps float64, format string) string {
	if format != "BGR" {
		format = "RGB"
	}
	num, den := 0, 1
	if fps < 1.0 {
		num = 1
		den = int(1.0 / fps)
	} else {
		num = int(fps)
	}
	return fmt.Sprintf("video/x-raw,format=%s,width=%d,height=%d,framerate=%d/%d",
		format, width, height, num, den)
}
