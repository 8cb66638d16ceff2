package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/agora/shared/domain"
	"github.com/itchan-dev/agora/shared/middleware/metrics"
)

// PostStorage persists the post tree of each thread.
//
// CreatePost appends the post and links it into its parent's child sequence
// as one atomic unit: ErrNotFound if the thread is missing, ErrInvalidReference
// if the parent is not a post of the same thread. SoftDeletePost reports
// whether this call performed the transition.
type PostStorage interface {
	CreatePost(ctx context.Context, post domain.Post) error
	GetPost(ctx context.Context, threadId domain.ThreadId, postId domain.PostId) (domain.Post, error)
	FindPost(ctx context.Context, postId domain.PostId) (domain.Post, error)
	GetChildren(ctx context.Context, postId domain.PostId) ([]domain.PostId, error)
	ListPosts(ctx context.Context, threadId domain.ThreadId) ([]domain.Post, error)
	SoftDeletePost(ctx context.Context, threadId domain.ThreadId, postId domain.PostId) (bool, error)
}

type PostValidator interface {
	Content(text domain.PostText) error
	ImageRef(ref domain.ImageRef) error
}

type TextSanitizer interface {
	Sanitize(text string) string
}

type PostTree struct {
	storage   PostStorage
	validator PostValidator
	sanitizer TextSanitizer
	events    EventPublisher
	now       func() time.Time
}

func NewPostTree(storage PostStorage, validator PostValidator, sanitizer TextSanitizer, events EventPublisher) *PostTree {
	return &PostTree{
		storage:   storage,
		validator: validator,
		sanitizer: sanitizer,
		events:    events,
		now:       time.Now,
	}
}

// CreatePost appends a post to the thread, under data.ParentId when set.
func (t *PostTree) CreatePost(ctx context.Context, data domain.PostCreationData) (domain.Post, error) {
	content := t.sanitizer.Sanitize(data.Content)
	if err := t.validator.Content(content); err != nil {
		return domain.Post{}, err
	}
	imageRef := data.ImageRef
	if imageRef != nil && *imageRef == "" {
		imageRef = nil
	}
	if imageRef != nil {
		if err := t.validator.ImageRef(*imageRef); err != nil {
			return domain.Post{}, err
		}
	}

	post := domain.Post{
		Id:        uuid.NewString(),
		ThreadId:  data.ThreadId,
		Owner:     data.Owner,
		Content:   &content,
		ImageRef:  imageRef,
		CreatedAt: t.now().UTC().Truncate(time.Microsecond),
		ParentId:  data.ParentId,
		ChildIds:  domain.ChildIds{},
		Votes:     domain.VoteMap{},
	}
	if err := t.storage.CreatePost(ctx, post); err != nil {
		return domain.Post{}, err
	}

	metrics.PostsCreated.Inc()
	emit(ctx, t.events, domain.PostCreated{ThreadId: post.ThreadId, Post: post})
	return post, nil
}

func (t *PostTree) GetPost(ctx context.Context, threadId domain.ThreadId, postId domain.PostId) (domain.Post, error) {
	return retryOnce(ctx, "get post", func() (domain.Post, error) {
		return t.storage.GetPost(ctx, threadId, postId)
	})
}

// FindPost looks a post up by id alone, whatever thread holds it.
func (t *PostTree) FindPost(ctx context.Context, postId domain.PostId) (domain.Post, error) {
	return retryOnce(ctx, "find post", func() (domain.Post, error) {
		return t.storage.FindPost(ctx, postId)
	})
}

func (t *PostTree) GetChildren(ctx context.Context, postId domain.PostId) ([]domain.PostId, error) {
	return retryOnce(ctx, "get children", func() ([]domain.PostId, error) {
		return t.storage.GetChildren(ctx, postId)
	})
}

// ListPosts is the posts-only view of a thread, in creation order.
func (t *PostTree) ListPosts(ctx context.Context, threadId domain.ThreadId) ([]domain.Post, error) {
	return retryOnce(ctx, "list posts", func() ([]domain.Post, error) {
		return t.storage.ListPosts(ctx, threadId)
	})
}

// SoftDelete clears the post's content and image and marks it deleted.
// The post keeps its id, parent and children. Deleting twice is a no-op.
func (t *PostTree) SoftDelete(ctx context.Context, threadId domain.ThreadId, postId domain.PostId) error {
	changed, err := retryOnce(ctx, "soft delete post", func() (bool, error) {
		return t.storage.SoftDeletePost(ctx, threadId, postId)
	})
	if err != nil {
		return err
	}
	if changed {
		metrics.PostsDeleted.Inc()
		emit(ctx, t.events, domain.PostDeleted{ThreadId: threadId, PostId: postId})
	}
	return nil
}
