package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/autopeer-io/vfleet/pkg/log"
)

// v311Client is the MQTT 3.1.1 implementation backed by paho.mqtt.golang.
// Mosquitto deployments of the fleet often only speak 3.1.1.
type v311Client struct {
	cfg  *ClientConfig
	conn paho.Client

	mu           sync.Mutex
	connectToken paho.Token

	subscriptions sync.Map
}

func newV311Client(cfg *ClientConfig) *v311Client {
	return &v311Client{cfg: cfg}
}

func (c *v311Client) Start(_ context.Context) error {
	opts := paho.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetUsername(c.cfg.Username).
		SetPassword(c.cfg.Password).
		SetProtocolVersion(ProtocolV311).
		SetKeepAlive(time.Duration(c.cfg.KeepAlive) * time.Second).
		SetConnectTimeout(c.cfg.ConnectTimeout).
		SetCleanSession(c.cfg.CleanStart).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(c.cfg.ReconnectBackoff).
		SetMaxReconnectInterval(c.cfg.ReconnectBackoff).
		SetTLSConfig(&tls.Config{InsecureSkipVerify: c.cfg.InsecureSkipVerify}).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	if c.cfg.WillTopic != "" {
		opts.SetBinaryWill(c.cfg.WillTopic, c.cfg.WillPayload, c.cfg.WillQoS, c.cfg.WillRetain)
	}

	log.Info("Starting MQTT client", "broker", c.cfg.BrokerURL, "clientID", c.cfg.ClientID, "protocol", "v3.1.1")

	conn := paho.NewClient(opts)

	c.mu.Lock()
	c.conn = conn
	// With ConnectRetry the token completes once the first connection is up.
	c.connectToken = conn.Connect()
	c.mu.Unlock()
	return nil
}

func (c *v311Client) Disconnect(_ context.Context) {
	if conn := c.client(); conn != nil {
		conn.Disconnect(250)
		log.Info("MQTT client disconnected", "clientID", c.cfg.ClientID)
	}
}

func (c *v311Client) Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error {
	conn := c.client()
	if conn == nil {
		return fmt.Errorf("client not started")
	}
	return waitToken(ctx, conn.Publish(topic, byte(qos), retain, payload))
}

func (c *v311Client) Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error {
	conn := c.client()
	if conn == nil {
		return fmt.Errorf("client not started")
	}

	entry := subscriptionEntry{topic: topic, qos: qos, handler: handler}
	c.subscriptions.Store(topic, entry)

	if err := waitToken(ctx, conn.Subscribe(topic, byte(qos), c.callback(entry))); err != nil {
		return fmt.Errorf("failed to send subscription packet: %w", err)
	}

	log.Debug("Subscribed to topic", "topic", topic)
	return nil
}

func (c *v311Client) Unsubscribe(ctx context.Context, topic string) error {
	conn := c.client()
	if conn == nil {
		return fmt.Errorf("client not started")
	}
	c.subscriptions.Delete(topic)
	return waitToken(ctx, conn.Unsubscribe(topic))
}

func (c *v311Client) AwaitConnection(ctx context.Context) error {
	c.mu.Lock()
	token := c.connectToken
	c.mu.Unlock()
	if token == nil {
		return fmt.Errorf("client not started")
	}
	return waitToken(ctx, token)
}

func (c *v311Client) IsConnected() bool {
	conn := c.client()
	return conn != nil && conn.IsConnectionOpen()
}

func (c *v311Client) client() paho.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *v311Client) callback(entry subscriptionEntry) paho.MessageHandler {
	return func(_ paho.Client, m paho.Message) {
		go entry.handler(context.Background(), m.Topic(), m.Payload())
	}
}

// onConnect restores subscriptions; a clean session forgets them on every reconnect.
func (c *v311Client) onConnect(conn paho.Client) {
	log.Info("MQTT connection established", "clientID", c.cfg.ClientID)

	c.subscriptions.Range(func(_, value any) bool {
		entry := value.(subscriptionEntry)
		token := conn.Subscribe(entry.topic, byte(entry.qos), c.callback(entry))
		go func() {
			if token.WaitTimeout(c.cfg.ConnectTimeout) && token.Error() != nil {
				log.Error(token.Error(), "Failed to re-subscribe", "topic", entry.topic)
			}
		}()
		return true
	})
}

func (c *v311Client) onConnectionLost(_ paho.Client, err error) {
	log.Error(err, "MQTT connection lost, reconnecting...", "broker", c.cfg.BrokerURL)
}

// waitToken blocks until the token completes or ctx ends.
func waitToken(ctx context.Context, token paho.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
