package service

import (
	"context"
	"sync"
	"time"

	"github.com/itchan-dev/agora/shared/domain"
	"github.com/itchan-dev/agora/shared/logger"
	"github.com/itchan-dev/agora/shared/middleware/metrics"
)

// TreeSweeper repairs parent/child linkage left inconsistent by a write
// that stopped between appending a post and linking it to its parent.
// Transactional stores never produce such state; the sweep then finds nothing.
type TreeSweeper struct {
	storage SweepStorage

	mu           sync.Mutex
	lastRunStats SweepStats
}

// SweepStats tracks the outcome of the last sweep.
type SweepStats struct {
	RunAt         time.Time
	UnlinkedFound int
	Relinked      int
	Pruned        int64
	DurationMs    int64
	Errors        []string
}

// SweepStorage defines the storage operations the sweeper needs. LinkChild
// must be idempotent: linking an already listed child changes nothing.
type SweepStorage interface {
	FindUnlinkedPosts(ctx context.Context) ([]domain.PostLink, error)
	LinkChild(ctx context.Context, link domain.PostLink) error
	PruneDanglingChildren(ctx context.Context) (int64, error)
}

func NewTreeSweeper(storage SweepStorage) *TreeSweeper {
	return &TreeSweeper{storage: storage}
}

// StartBackgroundSweep runs RunSweep every interval until ctx is done.
func (s *TreeSweeper) StartBackgroundSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started tree sweeper", "interval", interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.RunSweep(ctx); err != nil {
					logger.Log.Error("tree sweep failed", "error", err)
					continue
				}
				stats := s.LastRunStats()
				if stats.Relinked > 0 || stats.Pruned > 0 || len(stats.Errors) > 0 {
					logger.Log.Warn("tree sweep repaired links",
						"unlinked", stats.UnlinkedFound,
						"relinked", stats.Relinked,
						"pruned", stats.Pruned,
						"errors", len(stats.Errors),
						"duration_ms", stats.DurationMs)
				}
			case <-ctx.Done():
				logger.Log.Info("tree sweeper shutting down")
				return
			}
		}
	}()
}

// RunSweep executes a single repair cycle.
func (s *TreeSweeper) RunSweep(ctx context.Context) error {
	start := time.Now()
	stats := SweepStats{RunAt: start, Errors: []string{}}

	links, err := s.storage.FindUnlinkedPosts(ctx)
	if err != nil {
		return err
	}
	stats.UnlinkedFound = len(links)

	for _, link := range links {
		if err := s.storage.LinkChild(ctx, link); err != nil {
			stats.Errors = append(stats.Errors, "link "+link.ParentId+" -> "+link.ChildId+": "+err.Error())
			continue
		}
		stats.Relinked++
	}
	metrics.TreeRepairs.WithLabelValues("relinked").Add(float64(stats.Relinked))

	pruned, err := s.storage.PruneDanglingChildren(ctx)
	if err != nil {
		stats.Errors = append(stats.Errors, "prune: "+err.Error())
	}
	stats.Pruned = pruned
	metrics.TreeRepairs.WithLabelValues("pruned").Add(float64(pruned))

	stats.DurationMs = time.Since(start).Milliseconds()
	s.mu.Lock()
	s.lastRunStats = stats
	s.mu.Unlock()
	return nil
}

func (s *TreeSweeper) LastRunStats() SweepStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunStats
}
