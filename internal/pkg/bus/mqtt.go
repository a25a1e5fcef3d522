package bus

import (
	"context"
	"fmt"

	"github.com/autopeer-io/vfleet/pkg/log"
	"github.com/autopeer-io/vfleet/pkg/mqtt"
	"github.com/autopeer-io/vfleet/pkg/options"
)

type mqttBus struct {
	client mqtt.Client
	qos    int
	logger log.Logger
}

func newMqttBus(opts *options.MqttOptions, name string, logger log.Logger) (*mqttBus, error) {
	cfg := opts.ToClientConfig()
	cfg.ClientID = mqtt.GenerateClientID(fmt.Sprintf("%s-%s", opts.ClientID, name))

	client, err := mqtt.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create mqtt client: %w", err)
	}
	return &mqttBus{client: client, qos: opts.QoS, logger: logger}, nil
}

func (b *mqttBus) Start(ctx context.Context) error {
	if err := b.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start mqtt client: %w", err)
	}
	if err := b.client.AwaitConnection(ctx); err != nil {
		return fmt.Errorf("mqtt connection not established: %w", err)
	}
	b.logger.Debug("MQTT session ready")
	return nil
}

func (b *mqttBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.client.Publish(ctx, topic, b.qos, false, payload)
}

func (b *mqttBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	return b.client.Subscribe(ctx, topic, b.qos, mqtt.MessageHandler(handler))
}

func (b *mqttBus) Close(ctx context.Context) error {
	b.client.Disconnect(ctx)
	return nil
}
