package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/config"
)

var (
	ErrNotConnected = errors.New("mqtt client not connected")
	ErrStopped      = errors.New("mqtt client stopped")
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	tokenPoll      = 200 * time.Millisecond
)

// Client is the publishing side of the link. Reconnection is left to the
// caller: auto-reconnect is disabled so a lost link is observable through
// IsConnected and re-established by calling Connect again.
type Client struct {
	client    mqtt.Client
	cfg       config.Common
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewClient(cfg config.Common, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL(cfg))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(connectTimeout)

	// Keepalive / timeouts
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort, "client_id", cfg.MQTTClientID)
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	c.client = mqtt.NewClient(opts)
	return c
}

// Connect performs one handshake attempt, honouring ctx and Disconnect.
func (c *Client) Connect(ctx context.Context) error {
	select {
	case <-c.stopCh:
		return ErrStopped
	default:
	}

	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()
	if err := waitToken(ctx, token, c.stopCh); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	// The OnConnect handler runs on its own goroutine and may not have
	// fired yet.
	c.setConnected(true)
	return nil
}

// Publish sends payload with the library defaults (QoS 0, not retained).
// Completion means the packet was handed to the network, nothing more.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	waitCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	token := c.client.Publish(topic, 0, false, payload)
	if err := waitToken(waitCtx, token, c.stopCh); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	c.logger.Debug("published", "topic", topic, "payload", string(payload))
	return nil
}

// IsConnected returns whether the client is connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client.IsConnected()
}

// Disconnect stops the client and closes the connection. Idempotent; after
// it, Connect returns ErrStopped.
func (c *Client) Disconnect() {
	c.stopOnce.Do(func() { close(c.stopCh) })

	if c.client != nil && c.client.IsConnectionOpen() {
		c.client.Disconnect(250)
	}

	c.setConnected(false)
	c.logger.Info("mqtt disconnected")
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

func brokerURL(cfg config.Common) string {
	return fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort)
}

// waitToken waits for token in a ctx/stop-aware loop.
func waitToken(ctx context.Context, token mqtt.Token, stopCh <-chan struct{}) error {
	for {
		if token.WaitTimeout(tokenPoll) {
			return token.Error()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return ErrStopped
		default:
		}
	}
}
