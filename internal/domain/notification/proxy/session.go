package proxy

import (
	"sync"

	"github.com/betalky/backend/internal/domain/notification/event"
	"github.com/google/uuid"
)

// Session is one live connection of a user. The owner of the connection reads
// events from C until it is closed.
type Session struct {
	id     string
	userID string
	c      chan *event.Event

	closed bool
	mutex  sync.Mutex

	registry *Registry
}

func newSession(registry *Registry, userID string, buffer int) *Session {
	return &Session{
		id:       uuid.NewString(),
		userID:   userID,
		c:        make(chan *event.Event, buffer),
		registry: registry,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) UserID() string {
	return s.userID
}

// C returns the event stream. It is closed when the session is closed or
// dropped after a failed send.
func (s *Session) C() <-chan *event.Event {
	return s.c
}

// Close unregisters the session and closes its stream. It is safe to call
// more than once.
func (s *Session) Close() {
	if s.close() {
		s.registry.unregister(s)
	}
}

// send never blocks. It reports false if the session is closed or its buffer
// is full.
func (s *Session) send(ev *event.Event) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.c <- ev:
		return true
	default:
		return false
	}
}

func (s *Session) close() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return false
	}

	s.closed = true
	close(s.c)
	return true
}
