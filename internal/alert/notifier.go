package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fitosanitario/internal/rules"

	"github.com/go-resty/resty/v2"
)

// Event an alert notification. Every notifier of one raise sees the same
// EventID.
type Event struct {
	EventID  string    `json:"event_id"`
	RaisedAt time.Time `json:"raised_at"`
	Alert    Alert     `json:"alerta"`
}

// Notifier delivers raised alerts outside the process
type Notifier interface {
	Name() string
	Notify(ctx context.Context, ev Event) error
}

// Publisher the MQTT publish surface (common/mqtt.Client)
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTNotifier publishes every alert as JSON to one topic
type MQTTNotifier struct {
	pub   Publisher
	topic string
	qos   byte
}

func NewMQTTNotifier(pub Publisher, topic string, qos byte) *MQTTNotifier {
	return &MQTTNotifier{pub: pub, topic: topic, qos: qos}
}

func (n *MQTTNotifier) Name() string { return "mqtt" }

func (n *MQTTNotifier) Notify(_ context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}
	return n.pub.Publish(n.topic, n.qos, false, payload)
}

// ICANotifier reports CRITICA and CUARENTENARIA alerts to the ICA webhook
type ICANotifier struct {
	client *resty.Client
}

// icaResponse webhook acknowledgement
type icaResponse struct {
	Status  string `json:"status"`
	Mensaje string `json:"mensaje"`
}

func NewICANotifier(endpoint, token string, timeout time.Duration) *ICANotifier {
	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &ICANotifier{client: client}
}

func (n *ICANotifier) Name() string { return "ica" }

func (n *ICANotifier) Notify(ctx context.Context, ev Event) error {
	if ev.Alert.Severity != rules.SeverityCritical && ev.Alert.Severity != rules.SeverityQuarantine {
		return nil
	}

	var ack icaResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", ev.EventID).
		SetBody(ev).
		SetResult(&ack).
		Post("/alertas")
	if err != nil {
		return fmt.Errorf("failed to call ICA webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("ICA webhook rejected alert %d: status %d", ev.Alert.ID, resp.StatusCode())
	}
	return nil
}
