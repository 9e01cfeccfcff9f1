// Package control receives MQTT commands and applies them to the running
// session through a callback set. Commands arrive as JSON on the control
// topic and every one is answered on the response topic.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/config"
)

// Command is a control plane command.
type Command struct {
	Command string                 `json:"command"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// Response is the answer published for every received command.
type Response struct {
	CommandAck string                 `json:"command_ack"`
	Status     string                 `json:"status"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Timestamp  string                 `json:"timestamp"`
}

// CommandCallbacks contains the session operations commands map onto.
// A nil callback reports the command as not implemented.
type CommandCallbacks struct {
	OnSetColor  func(hex string) error
	OnSetPreset func(key string) error
	OnSetAlpha  func(alpha float64) error
	OnSetFPS    func(fps float64) error
	OnGetStatus func() map[string]interface{}
	OnSnapshot  func() (string, error)
}

// Handler handles control plane commands.
type Handler struct {
	cfg       *config.Config
	client    mqtt.Client
	commands  chan Command
	callbacks CommandCallbacks
}

// NewHandler creates a new control plane handler.
func NewHandler(cfg *config.Config, client mqtt.Client, callbacks CommandCallbacks) *Handler {
	return &Handler{
		cfg:       cfg,
		client:    client,
		commands:  make(chan Command, 10),
		callbacks: callbacks,
	}
}

// Start subscribes to the control topic and starts the command processor.
func (h *Handler) Start(ctx context.Context) error {
	topic := h.cfg.MQTT.ControlTopic
	qos := h.cfg.MQTT.QoS["control"]

	slog.Info("control: subscribing", "topic", topic, "qos", qos)

	token := h.client.Subscribe(topic, qos, h.messageHandler)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("control subscription timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("control subscription failed: %w", err)
	}

	slog.Info("control: handler started")

	go h.processCommands(ctx)

	return nil
}

// Stop unsubscribes and shuts down the command processor.
func (h *Handler) Stop() error {
	if h.client != nil && h.client.IsConnected() {
		token := h.client.Unsubscribe(h.cfg.MQTT.ControlTopic)
		token.Wait()
	}

	close(h.commands)

	slog.Info("control: handler stopped")
	return nil
}

// messageHandler is called by the MQTT client for every control message.
func (h *Handler) messageHandler(client mqtt.Client, msg mqtt.Message) {
	var cmd Command
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		slog.Error("control: failed to parse command", "error", err)
		h.sendResponse(Response{
			CommandAck: "unknown",
			Status:     "error",
			Error:      "invalid JSON",
		})
		return
	}

	slog.Info("control: command received", "command", cmd.Command)

	// Hand off to the processor; a full queue drops the command rather
	// than blocking the MQTT client.
	select {
	case h.commands <- cmd:
	default:
		slog.Warn("control: command queue full, dropping", "command", cmd.Command)
	}
}

// processCommands executes commands from the queue.
func (h *Handler) processCommands(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-h.commands:
			if !ok {
				return
			}
			h.sendResponse(h.execute(cmd))
		}
	}
}

// execute runs a single command against the callbacks and builds the response.
func (h *Handler) execute(cmd Command) Response {
	var resp Response
	resp.CommandAck = cmd.Command

	switch cmd.Command {
	case "set_color":
		if h.callbacks.OnSetColor == nil {
			resp.Status = "error"
			resp.Error = "set_color not implemented"
			break
		}
		hex, ok := cmd.Params["hex"].(string)
		if !ok {
			resp.Status = "error"
			resp.Error = "missing or invalid 'hex' parameter (expected string like #RRGGBB)"
			break
		}
		if err := h.callbacks.OnSetColor(hex); err != nil {
			resp.Status = "error"
			resp.Error = err.Error()
			break
		}
		resp.Status = "success"
		resp.Data = map[string]interface{}{
			"hex":     hex,
			"message": "wall color updated",
		}

	case "set_preset":
		if h.callbacks.OnSetPreset == nil {
			resp.Status = "error"
			resp.Error = "set_preset not implemented"
			break
		}
		key, ok := cmd.Params["key"].(string)
		if !ok {
			resp.Status = "error"
			resp.Error = "missing or invalid 'key' parameter (expected string \"1\"..\"9\")"
			break
		}
		if err := h.callbacks.OnSetPreset(key); err != nil {
			resp.Status = "error"
			resp.Error = err.Error()
			break
		}
		resp.Status = "success"
		resp.Data = map[string]interface{}{
			"preset":  key,
			"message": "preset applied",
		}
		// Report the color the preset resolved to.
		if h.callbacks.OnGetStatus != nil {
			if hex, ok := h.callbacks.OnGetStatus()["current_color"]; ok {
				resp.Data["hex"] = hex
			}
		}

	case "set_alpha":
		if h.callbacks.OnSetAlpha == nil {
			resp.Status = "error"
			resp.Error = "set_alpha not implemented"
			break
		}
		alpha, ok := cmd.Params["alpha"].(float64)
		if !ok {
			resp.Status = "error"
			resp.Error = "missing or invalid 'alpha' parameter (expected number in [0, 1])"
			break
		}
		if err := h.callbacks.OnSetAlpha(alpha); err != nil {
			resp.Status = "error"
			resp.Error = err.Error()
			break
		}
		resp.Status = "success"
		resp.Data = map[string]interface{}{
			"alpha":   alpha,
			"message": "blend strength updated",
		}

	case "set_fps":
		if h.callbacks.OnSetFPS == nil {
			resp.Status = "error"
			resp.Error = "set_fps not implemented"
			break
		}
		fps, ok := cmd.Params["fps"].(float64)
		if !ok {
			resp.Status = "error"
			resp.Error = "missing or invalid 'fps' parameter (expected number)"
			break
		}
		if err := h.callbacks.OnSetFPS(fps); err != nil {
			resp.Status = "error"
			resp.Error = err.Error()
			break
		}
		resp.Status = "success"
		resp.Data = map[string]interface{}{
			"fps":     fps,
			"message": "capture rate updated",
		}

	case "get_status":
		if h.callbacks.OnGetStatus == nil {
			resp.Status = "error"
			resp.Error = "get_status not implemented"
			break
		}
		resp.Status = "success"
		resp.Data = h.callbacks.OnGetStatus()

	case "snapshot":
		if h.callbacks.OnSnapshot == nil {
			resp.Status = "error"
			resp.Error = "snapshot not implemented"
			break
		}
		path, err := h.callbacks.OnSnapshot()
		if err != nil {
			resp.Status = "error"
			resp.Error = err.Error()
			break
		}
		resp.Status = "success"
		resp.Data = map[string]interface{}{
			"path":    path,
			"message": "snapshot saved",
		}

	default:
		resp.Status = "error"
		resp.Error = fmt.Sprintf("unknown command: %s", cmd.Command)
	}

	return resp
}

// sendResponse publishes a response on the response topic.
func (h *Handler) sendResponse(resp Response) {
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)

	payload, err := json.Marshal(resp)
	if err != nil {
		slog.Error("control: failed to marshal response", "error", err)
		return
	}

	topic := h.cfg.MQTT.ResponseTopic
	qos := h.cfg.MQTT.QoS["control"]

	token := h.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		slog.Error("control: response publish timeout")
		return
	}
	if err := token.Error(); err != nil {
		slog.Error("control: failed to publish response", "error", err)
		return
	}

	slog.Debug("control: response sent", "command_ack", resp.CommandAck, "status", resp.Status)
}
