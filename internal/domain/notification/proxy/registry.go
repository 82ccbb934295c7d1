package proxy

import (
	"context"
	"runtime"
	"time"

	"github.com/betalky/backend/internal/domain/notification/event"
	"github.com/puzpuzpuz/xsync"
)

const pruneQueueSize = 1024

// Registry maps a user id to the live sessions of that user. It is safe for
// concurrent use. Dropped sessions are unregistered by Run, outside of the
// publishing path.
type Registry struct {
	hubs   *xsync.MapOf[string, *UserHub]
	pruneC chan *Session

	sessionBuffer   int
	cleanupInterval time.Duration
}

func NewRegistry(sessionBuffer int, cleanupInterval time.Duration) *Registry {
	if sessionBuffer <= 0 {
		sessionBuffer = 16
	}

	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Second
	}

	return &Registry{
		hubs:            xsync.NewMapOf[*UserHub](),
		pruneC:          make(chan *Session, pruneQueueSize),
		sessionBuffer:   sessionBuffer,
		cleanupInterval: cleanupInterval,
	}
}

// Subscribe registers a new live session for the user. The session stays
// registered until it is closed or a send to it fails.
func (r *Registry) Subscribe(userID string) *Session {
	session := newSession(r, userID, r.sessionBuffer)
	for {
		hub, _ := r.hubs.LoadOrStore(userID, NewUserHub(userID))
		if hub.register(session) {
			return session
		}

		// The hub was retired by the janitor and is leaving the map.
		runtime.Gosched()
	}
}

// Publish delivers ev to every live session of the user without blocking.
// Sessions that cannot take the event are closed and pruned.
func (r *Registry) Publish(ctx context.Context, userID string, ev *event.Event) {
	hub, ok := r.hubs.Load(userID)
	if !ok {
		return
	}

	for _, session := range hub.snapshot() {
		if !session.send(ev) {
			r.drop(session)
		}
	}
}

func (r *Registry) PublishMany(ctx context.Context, userIDs []string, ev *event.Event) {
	seen := make(map[string]struct{}, len(userIDs))
	for _, userID := range userIDs {
		if _, ok := seen[userID]; ok {
			continue
		}

		seen[userID] = struct{}{}
		r.Publish(ctx, userID, ev)
	}
}

// Size returns the number of live sessions of the user.
func (r *Registry) Size(userID string) int {
	hub, ok := r.hubs.Load(userID)
	if !ok {
		return 0
	}

	return hub.Size()
}

// Run prunes dropped sessions and removes empty hubs until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case session := <-r.pruneC:
			r.unregister(session)
		case <-ticker.C:
			r.cleanup()
		}
	}
}

func (r *Registry) drop(session *Session) {
	if !session.close() {
		return
	}

	select {
	case r.pruneC <- session:
	default:
		r.unregister(session)
	}
}

func (r *Registry) unregister(session *Session) {
	if hub, ok := r.hubs.Load(session.userID); ok {
		hub.unregister(session)
	}
}

func (r *Registry) cleanup() {
	r.hubs.Range(func(userID string, hub *UserHub) bool {
		if hub.retireIfEmpty() {
			r.hubs.Delete(userID)
		}

		return true
	})
}
