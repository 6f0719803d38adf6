package mqtt

import (
	"errors"
	"fmt"
	"time"

	"fitosanitario/common/config"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	// quiesce milliseconds granted to in-flight messages on disconnect
	quiesce = 250
)

// ErrTimeout the broker did not acknowledge in time
var ErrTimeout = errors.New("mqtt: timed out waiting for broker")

// Client publishes alert payloads to a broker
type Client struct {
	conn   paho.Client
	broker string
	logger *zap.Logger
}

func options(cfg *config.MQTTConfig, logger *zap.Logger) *paho.ClientOptions {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetConnectTimeout(connectTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("MQTT connection lost", zap.String("broker", cfg.Broker), zap.Error(err))
	})
	opts.SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
		logger.Info("MQTT reconnecting", zap.String("broker", cfg.Broker))
	})
	return opts
}

// NewClient connects to the configured broker
func NewClient(cfg *config.MQTTConfig, logger *zap.Logger) (*Client, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt: broker address is empty")
	}
	conn := paho.NewClient(options(cfg, logger))
	if err := wait(conn.Connect(), connectTimeout); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", cfg.Broker, err)
	}

	logger.Info("MQTT connected", zap.String("broker", cfg.Broker), zap.String("client_id", cfg.ClientID))
	return &Client{conn: conn, broker: cfg.Broker, logger: logger}, nil
}

// Publish sends payload and waits for the broker acknowledgement (QoS > 0)
func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if err := wait(c.conn.Publish(topic, qos, retained, payload), publishTimeout); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	c.logger.Debug("MQTT published", zap.String("topic", topic), zap.Int("bytes", len(payload)))
	return nil
}

func (c *Client) Disconnect() {
	c.conn.Disconnect(quiesce)
	c.logger.Info("MQTT disconnected", zap.String("broker", c.broker))
}

func (c *Client) IsConnected() bool {
	return c.conn.IsConnected()
}

func wait(token paho.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return ErrTimeout
	}
	return token.Error()
}
