package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/autopeer-io/vfleet/pkg/log"
	"github.com/autopeer-io/vfleet/pkg/options"
)

// redisBus maps topics one to one onto Redis pub/sub channels.
type redisBus struct {
	client *redis.Client
	logger log.Logger

	mu   sync.Mutex
	subs []*redis.PubSub
	wg   sync.WaitGroup
}

func newRedisBus(opts *options.RedisOptions, logger log.Logger) *redisBus {
	return &redisBus{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Username: opts.Username,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		logger: logger,
	}
}

func (b *redisBus) Start(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (b *redisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.client.Publish(ctx, topic, payload).Err()
}

func (b *redisBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	ps := b.client.Subscribe(ctx, topic)
	// Wait for the confirmation so no message published afterwards is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("redis subscribe %s: %w", topic, err)
	}

	b.mu.Lock()
	b.subs = append(b.subs, ps)
	b.mu.Unlock()

	ch := ps.Channel()
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range ch {
			handler(ctx, msg.Channel, []byte(msg.Payload))
		}
	}()

	b.logger.Debug("Subscribed to topic", "topic", topic)
	return nil
}

func (b *redisBus) Close(_ context.Context) error {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	var errs []error
	for _, ps := range subs {
		errs = append(errs, ps.Close())
	}
	b.wg.Wait()
	errs = append(errs, b.client.Close())
	return errors.Join(errs...)
}
