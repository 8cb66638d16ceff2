package service

import (
	"context"

	"github.com/itchan-dev/agora/shared/domain"
	"github.com/itchan-dev/agora/shared/logger"
	"github.com/itchan-dev/agora/shared/middleware/metrics"
)

// EventPublisher hands events to the notification collaborator.
type EventPublisher interface {
	Publish(ctx context.Context, evt domain.Event) error
}

// emit publishes evt without failing the operation that produced it; the
// write has already happened and delivery is fire-and-forget.
func emit(ctx context.Context, pub EventPublisher, evt domain.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(context.WithoutCancel(ctx), evt); err != nil {
		metrics.EventsPublished.WithLabelValues(string(evt.Type()), "error").Inc()
		logger.Log.Warn("failed to publish event", "type", evt.Type(), "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(string(evt.Type()), "ok").Inc()
}
