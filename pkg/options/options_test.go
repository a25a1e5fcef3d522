package options

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress("0.0.0.0:8080"))
	assert.NoError(t, ValidateAddress(":9092"))
	assert.Error(t, ValidateAddress("localhost"))
	assert.Error(t, ValidateAddress("localhost:http"))
	assert.Error(t, ValidateAddress("localhost:70000"))
}

func TestDefaultsAreValid(t *testing.T) {
	for name, o := range map[string]IOptions{
		"mqtt":  NewMqttOptions(),
		"kafka": NewKafkaOptions(),
		"redis": NewRedisOptions(),
		"bus":   NewBusOptions(),
		"http":  NewHttpOptions(),
		"s3":    NewS3Options(),
		"sim":   NewSimOptions(),
	} {
		assert.Empty(t, o.Validate(), name)
	}
}

func TestMqttOptionsValidate(t *testing.T) {
	o := NewMqttOptions()
	o.Broker = "localhost"
	o.ProtocolVersion = 3
	o.QoS = 3
	assert.Len(t, o.Validate(), 3)
}

func TestMqttOptionsToClientConfig(t *testing.T) {
	o := NewMqttOptions()
	o.SetAddress("10.0.0.7", 1884)

	a := o.ToClientConfig()
	b := o.ToClientConfig()

	assert.Equal(t, "tcp://10.0.0.7:1884", a.BrokerURL)
	assert.EqualValues(t, 60, a.KeepAlive)
	assert.Contains(t, a.ClientID, "vfleet-")
	assert.NotEqual(t, a.ClientID, b.ClientID)
}

func TestBusOptionsValidate(t *testing.T) {
	o := NewBusOptions()
	o.Backend = "amqp"
	o.Namespace = ""
	assert.Len(t, o.Validate(), 2)
}

func TestSimOptionsFlags(t *testing.T) {
	o := NewSimOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{
		"--sim.vehicles=3",
		"--sim.speed=0.5",
		"--sim.anomaly-policy=cycle",
		"--sim.unforced-action=continue",
	}))

	assert.Equal(t, 3, o.Vehicles)
	assert.Equal(t, 0.5, o.Speed)
	assert.Empty(t, o.Validate())

	o.AnomalyPolicy = "sometimes"
	o.Vehicles = 0
	assert.Len(t, o.Validate(), 2)
}

func TestHttpOptionsDisabled(t *testing.T) {
	o := NewHttpOptions()
	o.Addr = ""
	assert.False(t, o.Enabled())
	assert.Empty(t, o.Validate())
}
