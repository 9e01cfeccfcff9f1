// Package config loads and validates the arcolorized YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

// Config is the full arcolorized configuration tree.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Log      LogConfig      `yaml:"log"`
	Capture  CaptureConfig  `yaml:"capture"`
	Vision   VisionConfig   `yaml:"vision"`
	Server   ServerConfig   `yaml:"server"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Output   OutputConfig   `yaml:"output"`
	UI       UIConfig       `yaml:"ui"`
}

// InstanceConfig identifies this deployment.
type InstanceConfig struct {
	// ID is the unique instance name, lowercase alphanumerics and dashes.
	ID string `yaml:"id"`

	// Room is a free-form label for the physical location.
	Room string `yaml:"room"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`
}

// CaptureConfig selects and tunes the frame source.
type CaptureConfig struct {
	// Source is rtsp, file or mock.
	Source string `yaml:"source"`

	// URL is the rtsp:// address, required for the rtsp source.
	URL string `yaml:"url"`

	// Path is the input video path, required for the file source.
	Path string `yaml:"path"`

	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    float64 `yaml:"fps"`

	// Format is the capture channel order, rgb or bgr.
	Format string `yaml:"format"`

	// BufferFrames is the capture channel depth before frames are dropped.
	BufferFrames int `yaml:"buffer_frames"`

	// Decoder picks the H.264 decoder for RTSP: auto, vaapi or software.
	Decoder string `yaml:"decoder"`

	// Warmup measures the real source rate before processing starts.
	Warmup bool `yaml:"warmup"`
}

// VisionConfig tunes segmentation and composition.
type VisionConfig struct {
	EdgeLow             int     `yaml:"edge_low"`
	EdgeHigh            int     `yaml:"edge_high"`
	BrightnessThreshold int     `yaml:"brightness_threshold"`
	KernelSize          int     `yaml:"kernel_size"`
	Alpha               float64 `yaml:"alpha"`
	OutlineThickness    int     `yaml:"outline_thickness"`

	// InitialColor is the hex color selected at startup.
	InitialColor string `yaml:"initial_color"`
}

// ServerConfig controls the HTTP control surface.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// MQTTConfig controls the MQTT control and event surface.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// TopicPrefix roots every topic; defaults to arcolorize/<instance id>.
	TopicPrefix string `yaml:"topic_prefix"`

	// ControlTopic and ResponseTopic carry commands and their replies.
	// Empty values derive from TopicPrefix.
	ControlTopic  string `yaml:"control_topic"`
	ResponseTopic string `yaml:"response_topic"`

	// StatsTopic and ColorTopic carry periodic stats and color change
	// events. Empty values derive from TopicPrefix.
	StatsTopic string `yaml:"stats_topic"`
	ColorTopic string `yaml:"color_topic"`

	// QoS maps the logical channels control and events to MQTT QoS levels.
	QoS map[string]byte `yaml:"qos"`

	// StatsIntervalS is the stats publish period in seconds.
	StatsIntervalS int `yaml:"stats_interval_s"`
}

// OutputConfig controls the snapshot sink.
type OutputConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`

	// Format is png or jpeg.
	Format      string `yaml:"format"`
	JPEGQuality int    `yaml:"jpeg_quality"`

	// EveryN saves every Nth processed frame; 0 saves only on demand.
	EveryN int `yaml:"every_n"`

	// SideBySide writes original and repainted frames next to each other.
	SideBySide bool `yaml:"side_by_side"`

	// MaxWidth downscales wider snapshots; 0 keeps the native size.
	MaxWidth int `yaml:"max_width"`

	// SVGContours additionally writes wall boundaries as an SVG overlay.
	SVGContours bool `yaml:"svg_contours"`
}

// UIConfig controls the terminal status screen.
type UIConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given: mock capture
// at VGA, default vision thresholds, HTTP on :8080, MQTT and outputs off.
func Default() *Config {
	return &Config{
		Instance: InstanceConfig{ID: "arcolorize-01", Room: "unassigned"},
		Log:      LogConfig{Level: "info", Format: "json"},
		Capture: CaptureConfig{
			Source:       "mock",
			Width:        640,
			Height:       480,
			FPS:          10,
			Format:       "rgb",
			BufferFrames: 30,
			Decoder:      "auto",
		},
		Vision: VisionConfig{
			EdgeLow:             50,
			EdgeHigh:            150,
			BrightnessThreshold: 100,
			KernelSize:          5,
			Alpha:               0.7,
			OutlineThickness:    2,
			InitialColor:        "#FFFFFF",
		},
		Server: ServerConfig{Enabled: true, Listen: ":8080"},
		MQTT: MQTTConfig{
			Enabled:        false,
			QoS:            map[string]byte{"control": 1, "events": 0},
			StatsIntervalS: 10,
		},
		Output: OutputConfig{
			Enabled:     false,
			Dir:         "./captures",
			Format:      "png",
			JPEGQuality: 85,
			SideBySide:  true,
		},
		UI: UIConfig{Enabled: false},
	}
}

// Load reads a YAML file over the defaults and validates the result. An
// empty path returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PixelFormat converts the configured channel order to the vision type.
func (c CaptureConfig) PixelFormat() vision.PixelFormat {
	if c.Format == "bgr" {
		return vision.FormatBGR
	}
	return vision.FormatRGB
}

// PipelineConfig builds the vision pipeline settings for the given channel
// order. Callers pass the capture format so both halves always agree.
func (v VisionConfig) PipelineConfig(format vision.PixelFormat) vision.PipelineConfig {
	return vision.PipelineConfig{
		Format: format,
		Segmenter: vision.SegmenterConfig{
			EdgeLow:             uint8(v.EdgeLow),
			EdgeHigh:            uint8(v.EdgeHigh),
			BrightnessThreshold: uint8(v.BrightnessThreshold),
			KernelSize:          v.KernelSize,
		},
		Alpha:            v.Alpha,
		OutlineColor:     vision.ColorRGB(0, 255, 0, format),
		OutlineThickness: v.OutlineThickness,
	}
}
