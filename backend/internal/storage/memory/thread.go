package memory

import (
	"context"
	"sort"

	"github.com/itchan-dev/agora/shared/domain"
	internal_errors "github.com/itchan-dev/agora/shared/errors"
)

func (s *Storage) CreateThread(ctx context.Context, metadata domain.ThreadMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.threads[metadata.Id]; exists {
		return internal_errors.ConflictingWrite("thread id already taken")
	}
	metadata.NumPosts = 0
	metadata.Votes = cloneVotes(metadata.Votes)
	s.threads[metadata.Id] = &threadDoc{metadata: metadata}
	return nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.threads[id]
	if !ok {
		return domain.Thread{}, internal_errors.NotFound("thread")
	}
	posts := make([]domain.Post, 0, len(doc.posts))
	for _, p := range doc.posts {
		posts = append(posts, clonePost(p))
	}
	return domain.Thread{ThreadMetadata: doc.summary(), Posts: posts}, nil
}

func (s *Storage) ListThreadSummaries(ctx context.Context) ([]domain.ThreadMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ThreadMetadata, 0, len(s.threads))
	for _, doc := range s.threads {
		out = append(out, doc.summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Id > out[j].Id
	})
	return out, nil
}

func (s *Storage) DeleteThread(ctx context.Context, id domain.ThreadId) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.threads[id]
	if !ok {
		return internal_errors.NotFound("thread")
	}
	for _, p := range doc.posts {
		delete(s.postIdx, p.Id)
	}
	delete(s.threads, id)
	return nil
}
