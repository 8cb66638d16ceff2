package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/agora/shared/domain"
)

// ThreadStorage persists thread documents. DeleteThread removes the thread
// with every post and vote it contains in one atomic operation.
type ThreadStorage interface {
	CreateThread(ctx context.Context, metadata domain.ThreadMetadata) error
	GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	ListThreadSummaries(ctx context.Context) ([]domain.ThreadMetadata, error)
	DeleteThread(ctx context.Context, id domain.ThreadId) error
}

type ThreadValidator interface {
	Title(title domain.ThreadTitle) error
	Body(body string) error
}

type ThreadRepository struct {
	storage   ThreadStorage
	validator ThreadValidator
	sanitizer TextSanitizer
	now       func() time.Time
}

func NewThreadRepository(storage ThreadStorage, validator ThreadValidator, sanitizer TextSanitizer) *ThreadRepository {
	return &ThreadRepository{
		storage:   storage,
		validator: validator,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// CreateThread assigns an id and stores an empty thread.
func (r *ThreadRepository) CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadMetadata, error) {
	title := r.sanitizer.Sanitize(data.Title)
	body := r.sanitizer.Sanitize(data.Body)
	if err := r.validator.Title(title); err != nil {
		return domain.ThreadMetadata{}, err
	}
	if err := r.validator.Body(body); err != nil {
		return domain.ThreadMetadata{}, err
	}

	metadata := domain.ThreadMetadata{
		Id:        uuid.NewString(),
		Owner:     data.Owner,
		Title:     title,
		Body:      body,
		CreatedAt: r.now().UTC().Truncate(time.Microsecond),
		Votes:     domain.VoteMap{},
	}
	if err := r.storage.CreateThread(ctx, metadata); err != nil {
		return domain.ThreadMetadata{}, err
	}
	return metadata, nil
}

func (r *ThreadRepository) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	return retryOnce(ctx, "get thread", func() (domain.Thread, error) {
		return r.storage.GetThread(ctx, id)
	})
}

// ListThreadSummaries returns thread metadata only; posts are never loaded.
func (r *ThreadRepository) ListThreadSummaries(ctx context.Context) ([]domain.ThreadMetadata, error) {
	return retryOnce(ctx, "list threads", func() ([]domain.ThreadMetadata, error) {
		return r.storage.ListThreadSummaries(ctx)
	})
}

// DeleteThread hard-deletes the thread with all its posts and votes.
// Not retried: a retry after a lost acknowledgement would report NotFound.
func (r *ThreadRepository) DeleteThread(ctx context.Context, id domain.ThreadId) error {
	return r.storage.DeleteThread(ctx, id)
}
