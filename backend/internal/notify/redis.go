package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/agora/shared/domain"
	"github.com/itchan-dev/agora/shared/logger"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes on Redis pub/sub channels "<prefix>.<event type>".
type RedisPublisher struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedis(ctx context.Context, url, prefix string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Log.Info("redis publisher initialised", "addr", opt.Addr, "prefix", prefix)
	return &RedisPublisher{client: client, prefix: prefix, now: time.Now}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, evt domain.Event) error {
	data, err := encode(evt, p.now())
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, Subject(p.prefix, evt.Type()), data).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
