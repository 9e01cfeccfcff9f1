package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

var instanceIDPattern = regexp.MustCompile(`^[a-z0-9\-]+$`)

// Validate checks every section and fills derivable defaults in place.
// The first invalid field aborts with a descriptive error.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := validateInstance(&cfg.Instance); err != nil {
		return err
	}
	if err := validateLog(&cfg.Log); err != nil {
		return err
	}
	if err := validateCapture(&cfg.Capture); err != nil {
		return err
	}
	if err := validateVision(&cfg.Vision); err != nil {
		return err
	}
	if err := validateServer(&cfg.Server); err != nil {
		return err
	}
	if err := validateMQTT(&cfg.MQTT, cfg.Instance.ID); err != nil {
		return err
	}
	if err := validateOutput(&cfg.Output); err != nil {
		return err
	}
	return nil
}

func validateInstance(c *InstanceConfig) error {
	if c.ID == "" {
		c.ID = "arcolorize-01"
	}
	if !instanceIDPattern.MatchString(c.ID) {
		return fmt.Errorf("instance.id %q must be lowercase alphanumerics and dashes", c.ID)
	}
	return nil
}

func validateLog(c *LogConfig) error {
	if c.Level == "" {
		c.Level = "info"
	}
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be debug, info, warn or error", c.Level)
	}
	if c.Format == "" {
		c.Format = "json"
	}
	if c.Format != "json" && c.Format != "text" {
		return fmt.Errorf("log.format %q must be json or text", c.Format)
	}
	return nil
}

func validateCapture(c *CaptureConfig) error {
	switch c.Source {
	case "rtsp":
		if !strings.HasPrefix(c.URL, "rtsp://") {
			return fmt.Errorf("capture.url %q must start with rtsp:// for the rtsp source", c.URL)
		}
	case "file":
		if c.Path == "" {
			return fmt.Errorf("capture.path is required for the file source")
		}
	case "mock":
	default:
		return fmt.Errorf("capture.source %q must be rtsp, file or mock", c.Source)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("capture resolution %dx%d must be positive", c.Width, c.Height)
	}
	if c.FPS < 0.1 || c.FPS > 60 {
		return fmt.Errorf("capture.fps %.2f must be between 0.1 and 60", c.FPS)
	}
	if c.Format == "" {
		c.Format = "rgb"
	}
	if c.Format != "rgb" && c.Format != "bgr" {
		return fmt.Errorf("capture.format %q must be rgb or bgr", c.Format)
	}
	if c.BufferFrames <= 0 {
		c.BufferFrames = 30
	}
	if c.Decoder == "" {
		c.Decoder = "auto"
	}
	switch c.Decoder {
	case "auto", "vaapi", "software":
	default:
		return fmt.Errorf("capture.decoder %q must be auto, vaapi or software", c.Decoder)
	}
	return nil
}

func validateVision(c *VisionConfig) error {
	if c.EdgeLow < 0 || c.EdgeLow > 255 || c.EdgeHigh < 0 || c.EdgeHigh > 255 {
		return fmt.Errorf("vision edge thresholds %d/%d must be within 0..255", c.EdgeLow, c.EdgeHigh)
	}
	if c.EdgeLow > c.EdgeHigh {
		return fmt.Errorf("vision.edge_low %d must not exceed vision.edge_high %d", c.EdgeLow, c.EdgeHigh)
	}
	if c.BrightnessThreshold < 0 || c.BrightnessThreshold > 255 {
		return fmt.Errorf("vision.brightness_threshold %d must be within 0..255", c.BrightnessThreshold)
	}
	if c.KernelSize < 1 || c.KernelSize%2 == 0 {
		return fmt.Errorf("vision.kernel_size %d must be odd and positive", c.KernelSize)
	}
	if !(c.Alpha >= 0 && c.Alpha <= 1) {
		return fmt.Errorf("vision.alpha %v must be within [0, 1]", c.Alpha)
	}
	if c.OutlineThickness < 0 {
		return fmt.Errorf("vision.outline_thickness %d must not be negative", c.OutlineThickness)
	}
	if c.InitialColor == "" {
		c.InitialColor = "#FFFFFF"
	}
	if _, err := vision.ParseHex(c.InitialColor, vision.FormatRGB); err != nil {
		return fmt.Errorf("vision.initial_color %q: %w", c.InitialColor, err)
	}
	return nil
}

func validateServer(c *ServerConfig) error {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	return nil
}

func validateMQTT(c *MQTTConfig, instanceID string) error {
	if !c.Enabled {
		return nil
	}
	if !strings.HasPrefix(c.Broker, "tcp://") && !strings.HasPrefix(c.Broker, "ssl://") {
		return fmt.Errorf("mqtt.broker %q must start with tcp:// or ssl://", c.Broker)
	}
	if c.ClientID == "" {
		c.ClientID = instanceID
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = fmt.Sprintf("arcolorize/%s", instanceID)
	}
	if c.ControlTopic == "" {
		c.ControlTopic = fmt.Sprintf("%s/control", c.TopicPrefix)
	}
	if c.ResponseTopic == "" {
		c.ResponseTopic = fmt.Sprintf("%s/control/response", c.TopicPrefix)
	}
	if c.StatsTopic == "" {
		c.StatsTopic = fmt.Sprintf("%s/events/stats", c.TopicPrefix)
	}
	if c.ColorTopic == "" {
		c.ColorTopic = fmt.Sprintf("%s/events/color", c.TopicPrefix)
	}
	if c.QoS == nil {
		c.QoS = map[string]byte{}
	}
	for _, channel := range []string{"control", "events"} {
		q, ok := c.QoS[channel]
		if !ok {
			if channel == "control" {
				c.QoS[channel] = 1
			} else {
				c.QoS[channel] = 0
			}
			continue
		}
		if q > 2 {
			return fmt.Errorf("mqtt.qos.%s %d must be 0, 1 or 2", channel, q)
		}
	}
	if c.StatsIntervalS <= 0 {
		c.StatsIntervalS = 10
	}
	return nil
}

func validateOutput(c *OutputConfig) error {
	if c.Dir == "" {
		c.Dir = "./captures"
	}
	if c.Format == "" {
		c.Format = "png"
	}
	if c.Format != "png" && c.Format != "jpeg" {
		return fmt.Errorf("output.format %q must be png or jpeg", c.Format)
	}
	if c.JPEGQuality == 0 {
		c.JPEGQuality = 85
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality %d must be within 1..100", c.JPEGQuality)
	}
	if c.EveryN < 0 {
		return fmt.Errorf("output.every_n %d must not be negative", c.EveryN)
	}
	if c.MaxWidth < 0 {
		return fmt.Errorf("output.max_width %d must not be negative", c.MaxWidth)
	}
	return nil
}
