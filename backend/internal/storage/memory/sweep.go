package memory

import (
	"context"

	"github.com/itchan-dev/agora/shared/domain"
	internal_errors "github.com/itchan-dev/agora/shared/errors"
)

func (s *Storage) FindUnlinkedPosts(ctx context.Context) ([]domain.PostLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var links []domain.PostLink
	for _, doc := range s.threads {
		for _, p := range doc.posts {
			if p.ParentId == nil {
				continue
			}
			parent := doc.post(*p.ParentId)
			if parent != nil && !parent.HasChild(p.Id) {
				links = append(links, domain.PostLink{ThreadId: doc.metadata.Id, ParentId: parent.Id, ChildId: p.Id})
			}
		}
	}
	return links, nil
}

func (s *Storage) LinkChild(ctx context.Context, link domain.PostLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.threads[link.ThreadId]
	if !ok {
		return internal_errors.NotFound("thread")
	}
	parent := doc.post(link.ParentId)
	if parent == nil {
		return internal_errors.NotFound("post")
	}
	if !parent.HasChild(link.ChildId) {
		parent.ChildIds = append(parent.ChildIds, link.ChildId)
	}
	return nil
}

// PruneDanglingChildren drops child ids that do not name a post of the same
// thread whose parent is the listing post.
func (s *Storage) PruneDanglingChildren(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pruned int64
	for _, doc := range s.threads {
		for _, p := range doc.posts {
			kept := p.ChildIds[:0]
			for _, childId := range p.ChildIds {
				child := doc.post(childId)
				if child != nil && child.ParentId != nil && *child.ParentId == p.Id {
					kept = append(kept, childId)
					continue
				}
				pruned++
			}
			p.ChildIds = kept
		}
	}
	return pruned, nil
}
