package service

import (
	"context"
	"strconv"

	"github.com/itchan-dev/agora/shared/domain"
	internal_errors "github.com/itchan-dev/agora/shared/errors"
	"github.com/itchan-dev/agora/shared/middleware/metrics"
)

// VoteStorage persists vote maps. CastVote must apply domain.ResolveVote
// against the stored value in a single atomic write; there is no separate
// read round trip for callers to race on.
type VoteStorage interface {
	CastVote(ctx context.Context, target domain.VoteTarget, id string, userId domain.UserId, dir domain.VoteValue) (domain.VoteValue, error)
	GetVote(ctx context.Context, target domain.VoteTarget, id string, userId domain.UserId) (domain.VoteValue, bool, error)
	Tally(ctx context.Context, target domain.VoteTarget, id string) (int, error)
}

type VoteLedger struct {
	storage VoteStorage
	events  EventPublisher
}

func NewVoteLedger(storage VoteStorage, events EventPublisher) *VoteLedger {
	return &VoteLedger{storage: storage, events: events}
}

func (l *VoteLedger) cast(ctx context.Context, target domain.VoteTarget, id string, userId domain.UserId, dir domain.VoteValue) (domain.VoteValue, error) {
	if !dir.IsDirection() {
		return 0, internal_errors.InvalidInput("Vote direction must be -1 or 1")
	}
	if userId == "" {
		return 0, internal_errors.InvalidInput("Voter identity is required")
	}

	// not retried: casting twice is not idempotent when the first attempt landed
	value, err := l.storage.CastVote(ctx, target, id, userId, dir)
	if err != nil {
		return 0, err
	}
	metrics.VotesCast.WithLabelValues(target.String(), strconv.Itoa(int(value))).Inc()
	return value, nil
}

// CastVote records userId's vote on a post and returns the stored value.
// Casting the opposite of the current vote stores 0.
func (l *VoteLedger) CastVote(ctx context.Context, postId domain.PostId, userId domain.UserId, dir domain.VoteValue) (domain.VoteValue, error) {
	value, err := l.cast(ctx, domain.PostVotes, postId, userId, dir)
	if err != nil {
		return 0, err
	}
	emit(ctx, l.events, domain.VoteCast{PostId: postId, UserId: userId, ResultingValue: value})
	return value, nil
}

func (l *VoteLedger) getVote(ctx context.Context, target domain.VoteTarget, id string, userId domain.UserId) (domain.VoteValue, bool, error) {
	type result struct {
		value domain.VoteValue
		ok    bool
	}
	r, err := retryOnce(ctx, "get "+target.String()+" vote", func() (result, error) {
		v, ok, err := l.storage.GetVote(ctx, target, id, userId)
		return result{v, ok}, err
	})
	return r.value, r.ok, err
}

// GetVote returns userId's vote on a post; ok is false when none was cast.
func (l *VoteLedger) GetVote(ctx context.Context, postId domain.PostId, userId domain.UserId) (value domain.VoteValue, ok bool, err error) {
	return l.getVote(ctx, domain.PostVotes, postId, userId)
}

func (l *VoteLedger) Tally(ctx context.Context, postId domain.PostId) (int, error) {
	return retryOnce(ctx, "tally votes", func() (int, error) {
		return l.storage.Tally(ctx, domain.PostVotes, postId)
	})
}

// CastThreadVote is CastVote for the thread's own vote map.
func (l *VoteLedger) CastThreadVote(ctx context.Context, threadId domain.ThreadId, userId domain.UserId, dir domain.VoteValue) (domain.VoteValue, error) {
	value, err := l.cast(ctx, domain.ThreadVotes, threadId, userId, dir)
	if err != nil {
		return 0, err
	}
	emit(ctx, l.events, domain.ThreadVoteCast{ThreadId: threadId, UserId: userId, ResultingValue: value})
	return value, nil
}

func (l *VoteLedger) GetThreadVote(ctx context.Context, threadId domain.ThreadId, userId domain.UserId) (domain.VoteValue, bool, error) {
	return l.getVote(ctx, domain.ThreadVotes, threadId, userId)
}

func (l *VoteLedger) ThreadTally(ctx context.Context, threadId domain.ThreadId) (int, error) {
	return retryOnce(ctx, "tally thread votes", func() (int, error) {
		return l.storage.Tally(ctx, domain.ThreadVotes, threadId)
	})
}
