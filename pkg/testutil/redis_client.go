package testutil

import (
	"context"
	"sync"
)

// MockRedisClient is an in-process pub/sub bus.
type MockRedisClient struct {
	PublishFunc func(ctx context.Context, channel string, msg []byte) error

	mutex       sync.Mutex
	subscribers map[string][]chan []byte
}

func (m *MockRedisClient) Publish(ctx context.Context, channel string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, channel, msg)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, c := range m.subscribers[channel] {
		c <- msg
	}

	return nil
}

func (m *MockRedisClient) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	c := make(chan []byte, 64)

	m.mutex.Lock()
	if m.subscribers == nil {
		m.subscribers = make(map[string][]chan []byte)
	}
	m.subscribers[channel] = append(m.subscribers[channel], c)
	m.mutex.Unlock()

	go func() {
		<-ctx.Done()

		m.mutex.Lock()
		defer m.mutex.Unlock()

		subs := m.subscribers[channel]
		for i := range subs {
			if subs[i] == c {
				m.subscribers[channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(c)
	}()

	return c, nil
}

// Subscribers returns the number of active subscriptions on channel.
func (m *MockRedisClient) Subscribers(channel string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return len(m.subscribers[channel])
}

func (m *MockRedisClient) Close() error {
	return nil
}
