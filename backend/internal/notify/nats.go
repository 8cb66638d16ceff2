package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/agora/shared/domain"
	"github.com/itchan-dev/agora/shared/logger"
	"github.com/nats-io/nats.go"
)

// NatsPublisher publishes on core NATS subjects "<prefix>.<event type>".
type NatsPublisher struct {
	nc     *nats.Conn
	prefix string
	now    func() time.Time
}

func NewNats(url, prefix string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("agora-api"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Log.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Log.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	logger.Log.Info("nats publisher initialised", "prefix", prefix)
	return &NatsPublisher{nc: nc, prefix: prefix, now: time.Now}, nil
}

func (p *NatsPublisher) Publish(ctx context.Context, evt domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(evt, p.now())
	if err != nil {
		return err
	}
	return p.nc.Publish(Subject(p.prefix, evt.Type()), data)
}

// Close flushes pending messages before closing the connection.
func (p *NatsPublisher) Close() error {
	return p.nc.Drain()
}
