package proxy

import "sync"

// UserHub holds every live session of one user.
type UserHub struct {
	userID   string
	sessions map[string]*Session

	// retired is set once the hub was found empty by the janitor. A retired
	// hub accepts no more sessions and is about to leave the registry.
	retired bool
	mutex   sync.RWMutex
}

func NewUserHub(userID string) *UserHub {
	return &UserHub{
		userID:   userID,
		sessions: make(map[string]*Session),
	}
}

func (h *UserHub) register(session *Session) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.retired {
		return false
	}

	h.sessions[session.id] = session
	return true
}

func (h *UserHub) unregister(session *Session) {
	h.mutex.RLock()
	_, ok := h.sessions[session.id]
	h.mutex.RUnlock()
	if !ok {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.sessions, session.id)
}

// snapshot copies the session list so events are sent without holding the
// lock.
func (h *UserHub) snapshot() []*Session {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}

	return sessions
}

func (h *UserHub) retireIfEmpty() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if len(h.sessions) == 0 {
		h.retired = true
	}

	return h.retired
}

func (h *UserHub) Size() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.sessions)
}
