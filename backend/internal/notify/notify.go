// Package notify fans domain events out to real-time subscribers.
// Publishers are fire-and-forget collaborators of the services: a failed
// publish is reported to the caller, which logs it and moves on.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/agora/shared/config"
	"github.com/itchan-dev/agora/shared/domain"
	"github.com/itchan-dev/agora/shared/logger"
)

const (
	KindNone  = "none"
	KindNats  = "nats"
	KindRedis = "redis"
)

type Publisher interface {
	Publish(ctx context.Context, evt domain.Event) error
	Close() error
}

// Envelope is the wire format of every published event.
type Envelope struct {
	EventId    string           `json:"event_id"`
	Type       domain.EventType `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	Data       domain.Event     `json:"data"`
}

// Subject is the NATS subject / Redis channel for an event type.
func Subject(prefix string, t domain.EventType) string {
	return prefix + "." + string(t)
}

func encode(evt domain.Event, now time.Time) ([]byte, error) {
	return json.Marshal(Envelope{
		EventId:    uuid.NewString(),
		Type:       evt.Type(),
		OccurredAt: now.UTC(),
		Data:       evt,
	})
}

// New builds the publisher selected by cfg.Public.NotifyKind.
func New(ctx context.Context, cfg *config.Config) (Publisher, error) {
	prefix := cfg.Public.NotifySubjectPrefix
	switch cfg.Public.NotifyKind {
	case KindNats:
		return NewNats(cfg.Private.NatsURL, prefix)
	case KindRedis:
		return NewRedis(ctx, cfg.Private.RedisURL, prefix)
	case KindNone, "":
		logger.Log.Warn("event notifier disabled, events are only logged")
		return NewLog(), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Public.NotifyKind)
	}
}

// LogPublisher only records events at debug level.
type LogPublisher struct{}

func NewLog() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, evt domain.Event) error {
	logger.Log.Debug("event", "type", evt.Type(), "event", evt)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
