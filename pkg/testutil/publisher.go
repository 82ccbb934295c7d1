package testutil

import (
	"context"
	"sync"

	"github.com/betalky/backend/pkg/pubsub"
)

type MockPublisher struct {
	PublishFunc func(context.Context, string, *pubsub.Pack) error

	mutex sync.Mutex
	packs map[string][]*pubsub.Pack
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	m.mutex.Lock()
	if m.packs == nil {
		m.packs = make(map[string][]*pubsub.Pack)
	}
	m.packs[topic] = append(m.packs[topic], pack)
	m.mutex.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	return nil
}

func (m *MockPublisher) Packs(topic string) []*pubsub.Pack {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]*pubsub.Pack{}, m.packs[topic]...)
}
