package xredis

import (
	"context"
	"time"

	"github.com/betalky/backend/pkg/xcontext"
	"github.com/redis/go-redis/v9"
)

type Client interface {
	Publish(ctx context.Context, channel string, msg []byte) error

	// Subscribe streams the payloads received on channel until ctx is done.
	// The returned channel is closed afterwards.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)

	Close() error
}

type client struct {
	redisClient *redis.Client
}

func NewClient(ctx context.Context) (*client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:            xcontext.Configs(ctx).Redis.Addr,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolFIFO:        false,
		PoolSize:        5,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &client{redisClient: redisClient}, nil
}

func (c *client) Publish(ctx context.Context, channel string, msg []byte) error {
	return c.redisClient.Publish(ctx, channel, msg).Err()
}

func (c *client) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	pubsub := c.redisClient.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (c *client) Close() error {
	return c.redisClient.Close()
}
