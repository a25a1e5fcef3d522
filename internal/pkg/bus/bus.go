// Package bus abstracts the publish/subscribe transport the fleet talks
// over. Every vehicle owns one Bus session; backends are MQTT (3.1.1 or 5),
// Kafka, Redis pub/sub and an in-process broker.
package bus

import (
	"context"
	"fmt"

	"github.com/autopeer-io/vfleet/pkg/log"
	"github.com/autopeer-io/vfleet/pkg/options"
)

// Handler processes a message received on a subscribed topic.
type Handler func(ctx context.Context, topic string, payload []byte)

// Bus is one session with the message bus.
type Bus interface {
	// Start connects the session. It blocks until the backend is reachable
	// or ctx ends.
	Start(ctx context.Context) error

	// Publish sends payload to topic. Delivery is at most once; an error
	// only means the message was not handed to the backend.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe registers handler for topic. Topics are MQTT-style names,
	// e.g. "PTIN2023/CAR/STARTROUTE".
	Subscribe(ctx context.Context, topic string, handler Handler) error

	// Close releases the session.
	Close(ctx context.Context) error
}

// Config groups the options of every backend. Only the one selected by
// Bus.Backend is used.
type Config struct {
	Bus   *options.BusOptions
	Mqtt  *options.MqttOptions
	Kafka *options.KafkaOptions
	Redis *options.RedisOptions
}

// Factory opens bus sessions for the selected backend.
type Factory struct {
	cfg    *Config
	memory *MemoryBroker
	logger log.Logger
}

// NewFactory creates a Factory. A non-nil broker is used for the memory
// backend; otherwise a private one is created.
func NewFactory(cfg *Config, broker *MemoryBroker, logger log.Logger) *Factory {
	if broker == nil {
		broker = NewMemoryBroker()
	}
	return &Factory{cfg: cfg, memory: broker, logger: logger}
}

// Broker returns the in-process broker backing the memory backend.
func (f *Factory) Broker() *MemoryBroker {
	return f.memory
}

// NewSession opens a session named name. The name identifies the session in
// logs, client IDs and consumer groups.
func (f *Factory) NewSession(name string) (Bus, error) {
	logger := f.logger.WithValues("session", name)

	switch f.cfg.Bus.Backend {
	case options.BusMQTT:
		return newMqttBus(f.cfg.Mqtt, name, logger)
	case options.BusKafka:
		return newKafkaBus(f.cfg.Kafka, name, logger), nil
	case options.BusRedis:
		return newRedisBus(f.cfg.Redis, logger), nil
	case options.BusMemory:
		return f.memory.Session(), nil
	default:
		return nil, fmt.Errorf("unknown bus backend %q", f.cfg.Bus.Backend)
	}
}
