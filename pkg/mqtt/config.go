package mqtt

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Supported MQTT protocol versions.
const (
	// ProtocolV5 selects the autopaho (MQTT 5) implementation.
	ProtocolV5 = 5
	// ProtocolV311 selects the paho.mqtt.golang (MQTT 3.1.1) implementation.
	ProtocolV311 = 4
)

// ClientConfig holds the configuration for creating a new MQTT Client.
type ClientConfig struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string

	// ProtocolVersion is either ProtocolV5 or ProtocolV311. Default is ProtocolV311,
	// which every broker speaks.
	ProtocolVersion int

	// KeepAlive in seconds. Default is 60.
	KeepAlive uint16

	// ConnectTimeout for the initial connection. Default is 5s.
	ConnectTimeout time.Duration

	// ReconnectBackoff is the constant delay between reconnect attempts. Default is 3s.
	ReconnectBackoff time.Duration

	// SessionExpiry in seconds (MQTT 5 only).
	SessionExpiry uint32

	// CleanStart indicates whether to start a clean session.
	CleanStart bool

	// InsecureSkipVerify disables TLS certificate verification for ssl/wss brokers.
	InsecureSkipVerify bool

	// Optional last will. Empty WillTopic disables it.
	WillTopic   string
	WillPayload []byte
	WillQoS     byte
	WillRetain  bool
}

// setDefaultConfig applies default values to the configuration.
func setDefaultConfig(cfg *ClientConfig) {
	if cfg.ProtocolVersion == 0 {
		cfg.ProtocolVersion = ProtocolV311
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.KeepAlive == 0 {
		cfg.KeepAlive = 60
	}
	if cfg.ReconnectBackoff == 0 {
		cfg.ReconnectBackoff = 3 * time.Second
	}
	if cfg.ClientID == "" {
		cfg.ClientID = GenerateClientID("vfleet")
	}
}

// GenerateClientID returns prefix followed by a short random suffix. Brokers
// disconnect the older session when two clients share an ID, so every vehicle
// session must get its own.
func GenerateClientID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

// Validate checks if the configuration is valid.
func (c *ClientConfig) Validate() error {
	if c.BrokerURL == "" {
		return errors.New("broker url is required")
	}
	u, err := url.Parse(c.BrokerURL)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("broker url %q must look like scheme://host:port", c.BrokerURL)
	}
	if c.ProtocolVersion != ProtocolV5 && c.ProtocolVersion != ProtocolV311 {
		return fmt.Errorf("unsupported mqtt protocol version %d", c.ProtocolVersion)
	}
	return nil
}
