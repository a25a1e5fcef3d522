package bus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/autopeer-io/vfleet/pkg/log"
	"github.com/autopeer-io/vfleet/pkg/options"
)

// KafkaTopic maps an MQTT-style topic onto a legal Kafka topic name:
// "PTIN2023/CAR/STARTROUTE" becomes "PTIN2023.CAR.STARTROUTE".
func KafkaTopic(topic string) string {
	return strings.ReplaceAll(topic, "/", ".")
}

type kafkaBus struct {
	opts   *options.KafkaOptions
	name   string
	logger log.Logger

	writer *kafka.Writer

	mu      sync.Mutex
	readers []*kafka.Reader
	wg      sync.WaitGroup
}

func newKafkaBus(opts *options.KafkaOptions, name string, logger log.Logger) *kafkaBus {
	return &kafkaBus{
		opts:   opts,
		name:   name,
		logger: logger,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(opts.Brokers...),
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           opts.BatchTimeout,
			WriteTimeout:           opts.WriteTimeout,
			AllowAutoTopicCreation: opts.AutoCreateTopics,
		},
	}
}

func (b *kafkaBus) Start(ctx context.Context) error {
	var errs []error
	for _, broker := range b.opts.Brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_ = conn.Close()
		b.logger.Debug("Kafka broker reachable", "broker", broker)
		return nil
	}
	return fmt.Errorf("kafka connect: %w", errors.Join(errs...))
}

func (b *kafkaBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.writer.WriteMessages(ctx, kafka.Message{
		Topic: KafkaTopic(topic),
		Value: payload,
	})
}

// Subscribe starts a reader in a consumer group of its own, so every
// session sees every message like an MQTT subscriber would.
func (b *kafkaBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.opts.Brokers,
		Topic:       KafkaTopic(topic),
		GroupID:     fmt.Sprintf("%s-%s", b.opts.GroupPrefix, b.name),
		StartOffset: kafka.LastOffset,
	})

	b.mu.Lock()
	b.readers = append(b.readers, reader)
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				// io.EOF after Close, ctx.Err() on shutdown
				b.logger.Debug("Kafka reader stopped", "topic", reader.Config().Topic, "reason", err.Error())
				return
			}
			handler(ctx, topic, msg.Value)
		}
	}()

	b.logger.Debug("Subscribed to topic", "topic", KafkaTopic(topic))
	return nil
}

func (b *kafkaBus) Close(_ context.Context) error {
	b.mu.Lock()
	readers := b.readers
	b.readers = nil
	b.mu.Unlock()

	var errs []error
	for _, r := range readers {
		errs = append(errs, r.Close())
	}
	b.wg.Wait()
	errs = append(errs, b.writer.Close())
	return errors.Join(errs...)
}
