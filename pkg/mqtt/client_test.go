package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientSelectsProtocol(t *testing.T) {
	c, err := NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883"})
	require.NoError(t, err)
	assert.IsType(t, &v311Client{}, c)

	c, err = NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883", ProtocolVersion: ProtocolV5})
	require.NoError(t, err)
	assert.IsType(t, &pahoClient{}, c)
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)

	_, err = NewClient(&ClientConfig{})
	assert.Error(t, err)

	_, err = NewClient(&ClientConfig{BrokerURL: "localhost"})
	assert.Error(t, err)

	_, err = NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883", ProtocolVersion: 3})
	assert.Error(t, err)
}

func TestDefaultsApplied(t *testing.T) {
	cfg := &ClientConfig{BrokerURL: "tcp://localhost:1883"}
	_, err := NewClient(cfg)
	require.NoError(t, err)

	assert.EqualValues(t, 60, cfg.KeepAlive)
	assert.NotEmpty(t, cfg.ClientID)
	assert.Equal(t, ProtocolV311, cfg.ProtocolVersion)
}
