// Package mqttingest accepts capture sessions published by devices over
// MQTT and stores them through the same ingestion path as the HTTP API.
package mqttingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"capture-backend/internal/capture"
	"capture-backend/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrMalformedPayload = errors.New("malformed session payload")

type Ingester interface {
	Ingest(ctx context.Context, in capture.IngestInput) (capture.IngestResult, error)
}

type Listener struct {
	cfg      config.MQTTConfig
	ingester Ingester
	logger   *zap.Logger
	client   mqtt.Client
	// base is the context every message is handled with.
	base context.Context
}

func NewListener(cfg config.MQTTConfig, ingester Ingester, logger *zap.Logger) *Listener {
	if cfg.ClientID == "" {
		cfg.ClientID = "capture-backend-" + uuid.NewString()
	}
	return &Listener{
		cfg:      cfg,
		ingester: ingester,
		logger:   logger.With(zap.String("component", "mqtt_ingest")),
		base:     context.Background(),
	}
}

// Start connects to the broker and subscribes. Messages keep flowing until
// Stop is called; ctx only bounds message handling.
func (l *Listener) Start(ctx context.Context) error {
	l.base = ctx

	opts := mqtt.NewClientOptions()
	opts.AddBroker(l.cfg.Broker)
	opts.SetClientID(l.cfg.ClientID)
	if l.cfg.Username != "" {
		opts.SetUsername(l.cfg.Username)
	}
	if l.cfg.Password != "" {
		opts.SetPassword(l.cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(10 * time.Second)
	// resubscribe after every reconnect; clean sessions drop subscriptions
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		if token := c.Subscribe(l.cfg.Topic, l.cfg.QoS, l.onMessage); token.Wait() && token.Error() != nil {
			l.logger.Error("subscribe failed", zap.String("topic", l.cfg.Topic), zap.Error(token.Error()))
			return
		}
		l.logger.Info("subscribed", zap.String("topic", l.cfg.Topic))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		l.logger.Warn("broker connection lost", zap.Error(err))
	})

	l.client = mqtt.NewClient(opts)
	if token := l.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect to MQTT broker: %w", token.Error())
	}
	return nil
}

func (l *Listener) Stop() {
	if l.client != nil && l.client.IsConnected() {
		l.client.Disconnect(250)
	}
}

func (l *Listener) onMessage(_ mqtt.Client, msg mqtt.Message) {
	res, err := l.HandleMessage(l.base, msg.Topic(), msg.Payload())
	if err != nil {
		l.logger.Warn("dropping MQTT session",
			zap.String("topic", msg.Topic()),
			zap.Int("bytes", len(msg.Payload())),
			zap.Error(err),
		)
		return
	}
	l.logger.Debug("MQTT session stored",
		zap.String("topic", msg.Topic()),
		zap.Uint("session_id", res.SessionID),
	)
}

// HandleMessage decodes one payload and ingests it. The payload is the
// body of POST /api/sessions; a missing device_ip falls back to the device
// segment of the topic.
func (l *Listener) HandleMessage(ctx context.Context, topic string, payload []byte) (capture.IngestResult, error) {
	var body capture.IngestRequest
	if err := json.Unmarshal(payload, &body); err != nil {
		return capture.IngestResult{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if body.Barcodes == nil {
		return capture.IngestResult{}, fmt.Errorf("%w: missing barcodes array", ErrMalformedPayload)
	}

	in := body.ToInput()
	if strings.TrimSpace(in.DeviceAddress) == "" {
		in.DeviceAddress = DeviceFromTopic(topic)
	}
	return l.ingester.Ingest(ctx, in)
}

// DeviceFromTopic returns the second segment of topic, e.g. "tc58-0042"
// for "capture/tc58-0042/sessions".
func DeviceFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}
