package options

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/pflag"

	"github.com/autopeer-io/vfleet/pkg/mqtt"
)

var _ IOptions = (*MqttOptions)(nil)

// MqttOptions contains configuration for the MQTT bus backend.
type MqttOptions struct {
	Broker   string `json:"broker" mapstructure:"broker"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`

	// ClientID is used as a prefix; every vehicle session appends its own suffix.
	ClientID string `json:"client-id" mapstructure:"client-id"`

	// ProtocolVersion is 5 (MQTT 5) or 4 (MQTT 3.1.1).
	ProtocolVersion int `json:"protocol-version" mapstructure:"protocol-version"`

	// Client behavior
	QoS            int           `json:"qos" mapstructure:"qos"`
	KeepAlive      time.Duration `json:"keep-alive" mapstructure:"keep-alive"`
	ConnectTimeout time.Duration `json:"connect-timeout" mapstructure:"connect-timeout"`
	SessionExpiry  uint32        `json:"session-expiry" mapstructure:"session-expiry"`
	CleanStart     bool          `json:"clean-start" mapstructure:"clean-start"`

	// InsecureSkipVerify controls whether a client verifies the server's certificate chain and host name.
	// This should be used only for testing.
	InsecureSkipVerify bool `json:"insecure-skip-verify" mapstructure:"insecure-skip-verify"`
}

// NewMqttOptions creates a new MqttOptions with default values.
func NewMqttOptions() *MqttOptions {
	return &MqttOptions{
		Broker:          "tcp://localhost:1883",
		ClientID:        "vfleet",
		ProtocolVersion: mqtt.ProtocolV311,
		KeepAlive:       60 * time.Second,
		ConnectTimeout:  5 * time.Second,
		SessionExpiry:   60,
		CleanStart:      true,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *MqttOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if u, err := url.Parse(o.Broker); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Errorf("--mqtt.broker %q must look like scheme://host:port", o.Broker))
	}
	if o.ProtocolVersion != mqtt.ProtocolV5 && o.ProtocolVersion != mqtt.ProtocolV311 {
		errors = append(errors, fmt.Errorf("--mqtt.protocol-version must be 4 or 5, got %d", o.ProtocolVersion))
	}
	if o.QoS < 0 || o.QoS > 2 {
		errors = append(errors, fmt.Errorf("--mqtt.qos must be 0, 1 or 2, got %d", o.QoS))
	}

	return errors
}

// AddFlags adds flags for MqttOptions to the specified FlagSet.
func (o *MqttOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Broker, "mqtt.broker", o.Broker, "The URL of the MQTT broker.")
	fs.StringVar(&o.Username, "mqtt.username", o.Username, "The username for MQTT authentication.")
	fs.StringVar(&o.Password, "mqtt.password", o.Password, "The password for MQTT authentication.")
	fs.StringVar(&o.ClientID, "mqtt.client-id", o.ClientID, "Client ID prefix; each session gets a random suffix.")
	fs.IntVar(&o.ProtocolVersion, "mqtt.protocol-version", o.ProtocolVersion, "MQTT protocol version: 4 (3.1.1) or 5.")
	fs.IntVar(&o.QoS, "mqtt.qos", o.QoS, "QoS used for publishing and subscribing.")

	fs.DurationVar(&o.KeepAlive, "mqtt.keep-alive", o.KeepAlive, "MQTT Keep Alive interval.")
	fs.DurationVar(&o.ConnectTimeout, "mqtt.connect-timeout", o.ConnectTimeout, "Timeout for establishing MQTT connection.")
	fs.Uint32Var(&o.SessionExpiry, "mqtt.session-expiry", o.SessionExpiry, "MQTT Session Expiry Interval in seconds (MQTT 5 only).")
	fs.BoolVar(&o.CleanStart, "mqtt.clean-start", o.CleanStart, "Start every session clean.")
	fs.BoolVar(&o.InsecureSkipVerify, "mqtt.insecure-skip-verify", o.InsecureSkipVerify, "If true, skips the TLS certificate verification.")
}

// SetAddress points the broker at host:port over plain TCP.
func (o *MqttOptions) SetAddress(host string, port int) {
	o.Broker = fmt.Sprintf("tcp://%s:%d", host, port)
}

// ToClientConfig builds a client config. Each call generates a fresh client ID
// so that concurrent sessions never evict each other.
func (o *MqttOptions) ToClientConfig() *mqtt.ClientConfig {
	return &mqtt.ClientConfig{
		BrokerURL:          o.Broker,
		Username:           o.Username,
		Password:           o.Password,
		ClientID:           mqtt.GenerateClientID(o.ClientID),
		ProtocolVersion:    o.ProtocolVersion,
		KeepAlive:          uint16(o.KeepAlive.Seconds()),
		SessionExpiry:      o.SessionExpiry,
		ConnectTimeout:     o.ConnectTimeout,
		CleanStart:         o.CleanStart,
		InsecureSkipVerify: o.InsecureSkipVerify,
	}
}
