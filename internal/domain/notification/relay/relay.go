package relay

import (
	"context"
	"encoding/json"

	"github.com/betalky/backend/internal/domain/notification"
	"github.com/betalky/backend/internal/domain/notification/event"
	"github.com/betalky/backend/pkg/xcontext"
	"github.com/betalky/backend/pkg/xredis"
)

type envelope struct {
	To    []string     `json:"to"`
	Event *event.Event `json:"event"`
}

// Publisher forwards events over a redis channel so that every process
// holding live sessions can deliver them.
type Publisher struct {
	redisClient xredis.Client
	channel     string
}

func NewPublisher(redisClient xredis.Client, channel string) *Publisher {
	return &Publisher{redisClient: redisClient, channel: channel}
}

func (p *Publisher) Publish(ctx context.Context, userID string, ev *event.Event) {
	p.PublishMany(ctx, []string{userID}, ev)
}

func (p *Publisher) PublishMany(ctx context.Context, userIDs []string, ev *event.Event) {
	if len(userIDs) == 0 {
		return
	}

	b, err := json.Marshal(envelope{To: userIDs, Event: ev})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal event %s: %v", ev.Event, err)
		return
	}

	if err := p.redisClient.Publish(ctx, p.channel, b); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot relay event %s: %v", ev.Event, err)
	}
}

// Subscriber feeds the events received from the redis channel into a local
// publisher, usually the session registry of this process.
type Subscriber struct {
	redisClient xredis.Client
	channel     string
	local       notification.Publisher
}

func NewSubscriber(redisClient xredis.Client, channel string, local notification.Publisher) *Subscriber {
	return &Subscriber{redisClient: redisClient, channel: channel, local: local}
}

func (s *Subscriber) Run(ctx context.Context) error {
	messages, err := s.redisClient.Subscribe(ctx, s.channel)
	if err != nil {
		return err
	}

	xcontext.Logger(ctx).Infof("Subscribed to relay channel %s", s.channel)
	for msg := range messages {
		var env envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot unmarshal relayed event: %v", err)
			continue
		}

		if err := env.Event.Validate(); err != nil {
			xcontext.Logger(ctx).Warnf("Invalid relayed event: %v", err)
			continue
		}

		s.local.PublishMany(ctx, env.To, env.Event)
	}

	return ctx.Err()
}
