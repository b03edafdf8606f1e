package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/kuretru/hass-device-gateway/entity"
)

const defaultPublishTimeout = 5 * time.Second

var (
	ErrNotConnected   = errors.New("mqtt: not connected")
	ErrNoURL          = errors.New("mqtt: broker url is empty")
	ErrAlreadyStarted = errors.New("mqtt: already connecting")
)

// Client is the transport the device publishes through. autopaho owns the
// reconnection; Client tracks the connection state and fans out connection events.
type Client struct {
	config    *entity.MQTTConfig
	serverURL *url.URL
	logger    *slog.Logger

	mu                sync.RWMutex
	connectionManager *autopaho.ConnectionManager
	started           bool
	connected         bool
	will              *paho.WillMessage
	onConnected       []func()
}

func New(config *entity.MQTTConfig, logger *slog.Logger) (*Client, error) {
	if config == nil || config.URL == "" {
		return nil, ErrNoURL
	}
	u, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("MQTT: parse mqtt url failed: %v, %w", config.URL, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config:    config,
		serverURL: u,
		logger:    logger,
	}, nil
}

// SetLastWill registers the message the broker publishes on our behalf when the
// connection drops uncleanly. It only takes effect before Connect.
func (c *Client) SetLastWill(topic string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		c.logger.Error("MQTT: last will must be set before connecting, ignored", "topic", topic)
		return
	}
	c.will = &paho.WillMessage{
		Retain:  c.config.WillRetain,
		QoS:     1,
		Topic:   topic,
		Payload: payload,
	}
}

// OnConnected registers fn to run after every successful (re)connection.
func (c *Client) OnConnected(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnected = append(c.onConnected, fn)
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	clientConfig := c.clientConfig()
	c.mu.Unlock()

	connectionManager, err := autopaho.NewConnection(ctx, clientConfig)
	if err != nil {
		c.mu.Lock()
		c.started = false
		c.mu.Unlock()
		return fmt.Errorf("MQTT: NewConnection failed, %w", err)
	}
	c.mu.Lock()
	c.connectionManager = connectionManager
	c.mu.Unlock()

	if err = connectionManager.AwaitConnection(ctx); err != nil {
		return fmt.Errorf("MQTT: AwaitConnection failed, %w", err)
	}
	c.logger.Info("MQTT: initialized", "server", c.config.URL)
	return nil
}

func (c *Client) clientConfig() autopaho.ClientConfig {
	return autopaho.ClientConfig{
		ServerUrls:      []*url.URL{c.serverURL},
		KeepAlive:       c.config.Keepalive,
		ConnectUsername: c.config.Username,
		ConnectPassword: []byte(c.config.Password),
		// CleanStartOnInitialConnection defaults to false. Setting this to true will clear the session on the first connection.
		CleanStartOnInitialConnection: false,
		// SessionExpiryInterval - Seconds that a session will survive after disconnection.
		SessionExpiryInterval: 60,
		WillMessage:           c.will,
		OnConnectionUp: func(connectionManager *autopaho.ConnectionManager, _ *paho.Connack) {
			c.logger.Info("MQTT: connected to server")
			c.handleConnectionUp(connectionManager)
		},
		OnConnectionDown: func() bool {
			c.logger.Warn("MQTT: connection lost, reconnecting")
			c.handleConnectionDown()
			return true
		},
		OnConnectError: func(err error) {
			c.logger.Error("MQTT: connect failed", "err", err)
		},
		// The error callbacks run on their own goroutines and may arrive after a
		// reconnect, so only OnConnectionDown changes the connection state.
		ClientConfig: paho.ClientConfig{
			ClientID: c.config.ClientID,
			OnClientError: func(err error) {
				c.logger.Info("MQTT: client error", "err", err)
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				if d.Properties != nil && d.Properties.ReasonString != "" {
					c.logger.Error("MQTT: server requested disconnect", "reason", d.Properties.ReasonString)
				} else {
					c.logger.Error("MQTT: server requested disconnect", "reasonCode", d.ReasonCode)
				}
			},
		},
	}
}

// handleConnectionUp may run before NewConnection has returned, so it stores the manager itself.
// Hooks publish, so they run on their own goroutine instead of autopaho's mainLoop.
func (c *Client) handleConnectionUp(connectionManager *autopaho.ConnectionManager) {
	c.mu.Lock()
	if connectionManager != nil {
		c.connectionManager = connectionManager
	}
	c.connected = true
	hooks := make([]func(), len(c.onConnected))
	copy(hooks, c.onConnected)
	c.mu.Unlock()

	go func() {
		for _, hook := range hooks {
			hook()
		}
	}()
}

func (c *Client) handleConnectionDown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
}

// Publish sends payload with QoS 0. It does not retry; autopaho resends nothing for QoS 0.
// Messages on the last will topic follow the will's retain flag.
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	c.mu.RLock()
	connectionManager, connected := c.connectionManager, c.connected
	c.mu.RUnlock()
	if connectionManager == nil || !connected {
		return ErrNotConnected
	}

	timeout := c.config.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := connectionManager.Publish(ctx, c.newPublish(topic, payload, retained)); err != nil {
		return fmt.Errorf("MQTT: publish to %v failed, %w", topic, err)
	}
	return nil
}

func (c *Client) newPublish(topic string, payload []byte, retained bool) *paho.Publish {
	c.mu.RLock()
	if c.will != nil && c.will.Retain && c.will.Topic == topic {
		retained = true
	}
	c.mu.RUnlock()

	return &paho.Publish{
		QoS:     0,
		Retain:  retained,
		Topic:   topic,
		Payload: payload,
	}
}

// Stop disconnects cleanly, which means the broker does not publish the last will.
func (c *Client) Stop(ctx context.Context) {
	c.mu.Lock()
	connectionManager := c.connectionManager
	c.connected = false
	c.mu.Unlock()

	if connectionManager != nil {
		if err := connectionManager.Disconnect(ctx); err != nil {
			c.logger.Warn("MQTT: disconnect failed", "err", err)
		}
	}
	c.logger.Info("MQTT: stopped")
}
