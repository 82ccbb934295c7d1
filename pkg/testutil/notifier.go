package testutil

import (
	"context"
	"sync"

	"github.com/betalky/backend/internal/domain/notification/event"
)

// MockNotifier records every published event per user.
type MockNotifier struct {
	mutex  sync.Mutex
	events map[string][]*event.Event
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{events: make(map[string][]*event.Event)}
}

func (m *MockNotifier) Publish(ctx context.Context, userID string, ev *event.Event) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.events[userID] = append(m.events[userID], ev)
}

func (m *MockNotifier) PublishMany(ctx context.Context, userIDs []string, ev *event.Event) {
	for _, id := range userIDs {
		m.Publish(ctx, id, ev)
	}
}

func (m *MockNotifier) Events(userID string) []*event.Event {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]*event.Event{}, m.events[userID]...)
}

// Kinds returns the kinds of the events received by the user, in order.
func (m *MockNotifier) Kinds(userID string) []event.Kind {
	kinds := []event.Kind{}
	for _, ev := range m.Events(userID) {
		kinds = append(kinds, ev.Event)
	}

	return kinds
}

func (m *MockNotifier) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.events = make(map[string][]*event.Event)
}
