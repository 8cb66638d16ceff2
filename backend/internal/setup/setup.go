package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/itchan-dev/agora/backend/internal/handler"
	"github.com/itchan-dev/agora/backend/internal/notify"
	"github.com/itchan-dev/agora/backend/internal/service"
	"github.com/itchan-dev/agora/backend/internal/storage/memory"
	"github.com/itchan-dev/agora/backend/internal/storage/pg"
	"github.com/itchan-dev/agora/backend/internal/utils"
	"github.com/itchan-dev/agora/shared/config"
	"github.com/itchan-dev/agora/shared/logger"
	"github.com/itchan-dev/agora/shared/middleware/ratelimiter"
)

// Store is everything the services need from a store adapter, plus its
// lifecycle.
type Store interface {
	service.ThreadStorage
	service.PostStorage
	service.VoteStorage
	service.SweepStorage
	Ping(ctx context.Context) error
	Cleanup() error
}

var (
	_ Store = (*pg.Storage)(nil)
	_ Store = (*memory.Storage)(nil)
)

// Dependencies holds all initialized dependencies. Close releases them.
type Dependencies struct {
	Config        *config.Config
	Storage       Store
	Publisher     notify.Publisher
	Handler       *handler.Handler
	Sweeper       *service.TreeSweeper
	WriteLimiter  *ratelimiter.UserRateLimiter
	GlobalLimiter *ratelimiter.UserRateLimiter
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	publisher, err := notify.New(ctx, cfg)
	if err != nil {
		storage.Cleanup()
		return nil, fmt.Errorf("notifier: %w", err)
	}

	sanitizer := utils.NewSanitizer()
	threads := service.NewThreadRepository(storage, &utils.ThreadValidator{
		MaxTitleLen: cfg.Public.MaxTitleLen,
		MaxBodyLen:  cfg.Public.MaxBodyLen,
	}, sanitizer)
	posts := service.NewPostTree(storage, &utils.PostValidator{MaxLen: cfg.Public.MaxPostLen}, sanitizer, publisher)
	votes := service.NewVoteLedger(storage, publisher)

	return &Dependencies{
		Config:        cfg,
		Storage:       storage,
		Publisher:     publisher,
		Handler:       handler.New(threads, posts, votes, storage),
		Sweeper:       service.NewTreeSweeper(storage),
		WriteLimiter:  ratelimiter.New(cfg.Public.WritesPerSecond, cfg.Public.WriteBurst, cfg.Public.LimiterIdleReset),
		GlobalLimiter: ratelimiter.New(cfg.Public.GlobalRPS, int(cfg.Public.GlobalRPS), cfg.Public.LimiterIdleReset),
	}, nil
}

func newStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Public.StorageKind {
	case "memory":
		logger.Log.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	case "postgres":
		storage, err := pg.New(ctx, cfg.Private.Pg)
		if err != nil {
			return nil, err
		}
		if err := storage.Migrate(ctx); err != nil {
			storage.Cleanup()
			return nil, err
		}
		return storage, nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Public.StorageKind)
	}
}

// Close stops background limiters and closes the publisher and the store.
func (d *Dependencies) Close() error {
	d.WriteLimiter.Stop()
	d.GlobalLimiter.Stop()
	return errors.Join(d.Publisher.Close(), d.Storage.Cleanup())
}
