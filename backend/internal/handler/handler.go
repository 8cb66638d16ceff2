package handler

import (
	"context"

	"github.com/itchan-dev/agora/shared/domain"
)

type ThreadService interface {
	CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadMetadata, error)
	GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	ListThreadSummaries(ctx context.Context) ([]domain.ThreadMetadata, error)
	DeleteThread(ctx context.Context, id domain.ThreadId) error
}

type PostService interface {
	CreatePost(ctx context.Context, data domain.PostCreationData) (domain.Post, error)
	GetPost(ctx context.Context, threadId domain.ThreadId, postId domain.PostId) (domain.Post, error)
	FindPost(ctx context.Context, postId domain.PostId) (domain.Post, error)
	GetChildren(ctx context.Context, postId domain.PostId) ([]domain.PostId, error)
	ListPosts(ctx context.Context, threadId domain.ThreadId) ([]domain.Post, error)
	SoftDelete(ctx context.Context, threadId domain.ThreadId, postId domain.PostId) error
}

type VoteService interface {
	CastVote(ctx context.Context, postId domain.PostId, userId domain.UserId, dir domain.VoteValue) (domain.VoteValue, error)
	GetVote(ctx context.Context, postId domain.PostId, userId domain.UserId) (domain.VoteValue, bool, error)
	Tally(ctx context.Context, postId domain.PostId) (int, error)
	CastThreadVote(ctx context.Context, threadId domain.ThreadId, userId domain.UserId, dir domain.VoteValue) (domain.VoteValue, error)
	GetThreadVote(ctx context.Context, threadId domain.ThreadId, userId domain.UserId) (domain.VoteValue, bool, error)
	ThreadTally(ctx context.Context, threadId domain.ThreadId) (int, error)
}

// HealthChecker reports whether the store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	thread ThreadService
	post   PostService
	vote   VoteService
	health HealthChecker
}

func New(thread ThreadService, post PostService, vote VoteService, health HealthChecker) *Handler {
	return &Handler{
		thread: thread,
		post:   post,
		vote:   vote,
		health: health,
	}
}
