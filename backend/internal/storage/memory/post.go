package memory

import (
	"context"

	"github.com/itchan-dev/agora/shared/domain"
	internal_errors "github.com/itchan-dev/agora/shared/errors"
)

// CreatePost appends the post and links it to its parent under one lock,
// so no reader sees one write without the other.
func (s *Storage) CreatePost(ctx context.Context, post domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.threads[post.ThreadId]
	if !ok {
		return internal_errors.NotFound("thread")
	}
	if _, taken := s.postIdx[post.Id]; taken {
		return internal_errors.ConflictingWrite("post id already taken")
	}

	var parent *domain.Post
	if post.ParentId != nil {
		parent = doc.post(*post.ParentId)
		if parent == nil {
			return internal_errors.InvalidReference("parent post does not exist in thread")
		}
	}

	stored := clonePost(&post)
	stored.ChildIds = domain.ChildIds{}
	stored.Votes = domain.VoteMap{}
	stored.Deleted = false
	doc.posts = append(doc.posts, &stored)
	s.postIdx[stored.Id] = doc.metadata.Id
	if parent != nil && !parent.HasChild(stored.Id) {
		parent.ChildIds = append(parent.ChildIds, stored.Id)
	}
	return nil
}

func (s *Storage) GetPost(ctx context.Context, threadId domain.ThreadId, postId domain.PostId) (domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.threads[threadId]
	if !ok {
		return domain.Post{}, internal_errors.NotFound("post")
	}
	p := doc.post(postId)
	if p == nil {
		return domain.Post{}, internal_errors.NotFound("post")
	}
	return clonePost(p), nil
}

func (s *Storage) FindPost(ctx context.Context, postId domain.PostId) (domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, p, ok := s.lookupPost(postId)
	if !ok {
		return domain.Post{}, internal_errors.NotFound("post")
	}
	return clonePost(p), nil
}

func (s *Storage) GetChildren(ctx context.Context, postId domain.PostId) ([]domain.PostId, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, p, ok := s.lookupPost(postId)
	if !ok {
		return nil, internal_errors.NotFound("post")
	}
	return append([]domain.PostId{}, p.ChildIds...), nil
}

func (s *Storage) ListPosts(ctx context.Context, threadId domain.ThreadId) ([]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.threads[threadId]
	if !ok {
		return nil, internal_errors.NotFound("thread")
	}
	posts := make([]domain.Post, 0, len(doc.posts))
	for _, p := range doc.posts {
		posts = append(posts, clonePost(p))
	}
	return posts, nil
}

func (s *Storage) SoftDeletePost(ctx context.Context, threadId domain.ThreadId, postId domain.PostId) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.threads[threadId]
	if !ok {
		return false, internal_errors.NotFound("post")
	}
	p := doc.post(postId)
	if p == nil {
		return false, internal_errors.NotFound("post")
	}
	if p.Deleted {
		return false, nil
	}
	p.Content = nil
	p.ImageRef = nil
	p.Deleted = true
	return true, nil
}
