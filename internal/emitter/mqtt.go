// Package emitter publishes session events to an MQTT broker: periodic
// stats snapshots and color selection changes.
package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/config"
)

// ColorEvent is the payload published when the wall color changes.
type ColorEvent struct {
	Event     string  `json:"event"`
	Hex       string  `json:"hex"`
	Name      string  `json:"name,omitempty"`
	Alpha     float64 `json:"alpha"`
	Timestamp string  `json:"timestamp"`
}

// Emitter publishes events to an MQTT broker.
type Emitter struct {
	cfg    *config.Config
	Client mqtt.Client // Exported for the control plane

	mu        sync.RWMutex
	published map[string]uint64 // count per topic
	errors    uint64
	connected bool
}

// Stats contains emitter statistics.
type Stats struct {
	Connected bool
	Published map[string]uint64
	Errors    uint64
}

// New creates an emitter for the configured broker. Connect must be called
// before publishing.
func New(cfg *config.Config) *Emitter {
	return &Emitter{
		cfg:       cfg,
		published: make(map[string]uint64),
	}
}

// Connect establishes the broker connection with automatic reconnection.
func (e *Emitter) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(e.cfg.MQTT.Broker)
	opts.SetClientID(e.cfg.MQTT.ClientID)
	if e.cfg.MQTT.Username != "" {
		opts.SetUsername(e.cfg.MQTT.Username)
		opts.SetPassword(e.cfg.MQTT.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		e.mu.Lock()
		e.connected = true
		e.mu.Unlock()
		slog.Info("mqtt connection established",
			"broker", e.cfg.MQTT.Broker,
			"client_id", e.cfg.MQTT.ClientID)
	}

	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		e.mu.Lock()
		e.connected = false
		e.mu.Unlock()
		slog.Warn("mqtt connection lost, will auto-reconnect",
			"error", err,
			"broker", e.cfg.MQTT.Broker)
	}

	e.Client = mqtt.NewClient(opts)

	slog.Info("connecting to mqtt broker", "broker", e.cfg.MQTT.Broker)

	token := e.Client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}

	e.mu.Lock()
	e.connected = true
	e.mu.Unlock()

	return nil
}

// PublishColorChange announces a color selection without blocking the
// caller. Delivery problems are counted and logged from a goroutine so the
// selection path never waits on the broker.
func (e *Emitter) PublishColorChange(hex, name string, alpha float64) error {
	if !e.isConnected() {
		e.recordError()
		return fmt.Errorf("mqtt not connected")
	}

	event := ColorEvent{
		Event:     "color_change",
		Hex:       hex,
		Name:      name,
		Alpha:     alpha,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		e.recordError()
		return fmt.Errorf("failed to marshal color event: %w", err)
	}

	topic := e.cfg.MQTT.ColorTopic
	qos := e.cfg.MQTT.QoS["events"]

	token := e.Client.Publish(topic, qos, false, payload)
	go func() {
		if !token.WaitTimeout(2 * time.Second) {
			e.recordError()
			slog.Warn("color event publish timeout", "topic", topic)
			return
		}
		if err := token.Error(); err != nil {
			e.recordError()
			slog.Warn("color event publish failed", "topic", topic, "error", err)
			return
		}
		e.recordPublished(topic)
		slog.Debug("color event published", "topic", topic, "hex", hex)
	}()

	return nil
}

// PublishStats publishes one stats snapshot and waits for delivery.
func (e *Emitter) PublishStats(stats map[string]interface{}) error {
	if !e.isConnected() {
		e.recordError()
		return fmt.Errorf("mqtt not connected")
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		e.recordError()
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	topic := e.cfg.MQTT.StatsTopic
	qos := e.cfg.MQTT.QoS["events"]

	token := e.Client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		e.recordError()
		return fmt.Errorf("stats publish timeout")
	}
	if err := token.Error(); err != nil {
		e.recordError()
		return fmt.Errorf("stats publish failed: %w", err)
	}

	e.recordPublished(topic)
	slog.Debug("stats published", "topic", topic, "size", len(payload))
	return nil
}

// StartStatsLoop publishes snapshots from statsFn on the configured interval
// until the context ends. Failed publishes are logged and retried on the
// next tick.
func (e *Emitter) StartStatsLoop(ctx context.Context, statsFn func() map[string]interface{}) {
	interval := time.Duration(e.cfg.MQTT.StatsIntervalS) * time.Second

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		slog.Info("stats publisher started", "interval", interval)

		for {
			select {
			case <-ctx.Done():
				slog.Info("stats publisher stopped")
				return
			case <-ticker.C:
				if err := e.PublishStats(statsFn()); err != nil {
					slog.Warn("periodic stats publish failed", "error", err)
				}
			}
		}
	}()
}

// Disconnect closes the broker connection.
func (e *Emitter) Disconnect() error {
	if e.Client != nil && e.Client.IsConnected() {
		e.Client.Disconnect(250) // 250ms grace period
		slog.Info("mqtt disconnected")
	}

	e.mu.Lock()
	e.connected = false
	e.mu.Unlock()

	return nil
}

// Stats returns emitter statistics.
func (e *Emitter) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	published := make(map[string]uint64)
	for k, v := range e.published {
		published[k] = v
	}

	return Stats{
		Connected: e.connected,
		Published: published,
		Errors:    e.errors,
	}
}

func (e *Emitter) isConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

func (e *Emitter) recordPublished(topic string) {
	e.mu.Lock()
	e.published[topic]++
	e.mu.Unlock()
}

func (e *Emitter) recordError() {
	e.mu.Lock()
	e.errors++
	e.mu.Unlock()
}
