package bus

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/vfleet/pkg/log"
	"github.com/autopeer-io/vfleet/pkg/options"
)

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) handle(_ context.Context, topic string, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, topic+" "+string(payload))
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func TestKafkaTopic(t *testing.T) {
	assert.Equal(t, "PTIN2023.CAR.STARTROUTE", KafkaTopic("PTIN2023/CAR/STARTROUTE"))
	assert.Equal(t, "plain", KafkaTopic("plain"))
}

func TestMemoryBus(t *testing.T) {
	ctx := context.Background()
	broker := NewMemoryBroker()

	pub := broker.Session()
	sub := broker.Session()
	require.NoError(t, pub.Start(ctx))
	require.NoError(t, sub.Start(ctx))

	exact, wildcard := &recorder{}, &recorder{}
	require.NoError(t, sub.Subscribe(ctx, "PTIN2023/CAR/STARTROUTE", exact.handle))
	require.NoError(t, sub.Subscribe(ctx, "PTIN2023/#", wildcard.handle))

	require.NoError(t, pub.Publish(ctx, "PTIN2023/CAR/STARTROUTE", []byte("a")))
	require.NoError(t, pub.Publish(ctx, "PTIN2023/CAR/ANOMALIA", []byte("b")))
	require.NoError(t, pub.Publish(ctx, "OTHER/CAR/ANOMALIA", []byte("c")))

	assert.Equal(t, []string{"PTIN2023/CAR/STARTROUTE a"}, exact.all())
	assert.Equal(t, []string{"PTIN2023/CAR/STARTROUTE a", "PTIN2023/CAR/ANOMALIA b"}, wildcard.all())

	require.NoError(t, sub.Close(ctx))
	require.NoError(t, pub.Publish(ctx, "PTIN2023/CAR/STARTROUTE", []byte("d")))
	assert.Len(t, exact.all(), 1, "closed session receives nothing")

	assert.ErrorIs(t, sub.Publish(ctx, "PTIN2023/CAR/STARTROUTE", nil), ErrClosed)
	assert.ErrorIs(t, sub.Subscribe(ctx, "x", exact.handle), ErrClosed)
}

func TestFactory(t *testing.T) {
	cfg := &Config{
		Bus:   options.NewBusOptions(),
		Mqtt:  options.NewMqttOptions(),
		Kafka: options.NewKafkaOptions(),
		Redis: options.NewRedisOptions(),
	}
	f := NewFactory(cfg, nil, log.NewNopLogger())

	for backend, want := range map[string]any{
		options.BusMQTT:   &mqttBus{},
		options.BusKafka:  &kafkaBus{},
		options.BusRedis:  &redisBus{},
		options.BusMemory: &MemorySession{},
	} {
		cfg.Bus.Backend = backend
		b, err := f.NewSession("vehicle-1")
		require.NoError(t, err, backend)
		assert.IsType(t, want, b, backend)
	}

	cfg.Bus.Backend = "carrier-pigeon"
	_, err := f.NewSession("vehicle-1")
	assert.Error(t, err)
}
