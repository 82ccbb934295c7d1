package notification

import (
	"context"

	"github.com/betalky/backend/internal/domain/notification/event"
)

// Publisher delivers events to the live sessions of users. Delivery is fire
// and forget: users without a live session miss the event.
type Publisher interface {
	Publish(ctx context.Context, userID string, ev *event.Event)
	PublishMany(ctx context.Context, userIDs []string, ev *event.Event)
}
