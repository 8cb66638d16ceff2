// Package memory is an in-process store adapter. A single lock serializes
// writers, so every method is one atomic step from a reader's point of view.
// Used in development mode and by service tests.
package memory

import (
	"context"
	"sync"

	"github.com/itchan-dev/agora/shared/domain"
)

type threadDoc struct {
	metadata domain.ThreadMetadata
	posts    []*domain.Post // creation order
}

type Storage struct {
	mu      sync.RWMutex
	threads map[domain.ThreadId]*threadDoc
	postIdx map[domain.PostId]domain.ThreadId
}

func New() *Storage {
	return &Storage{
		threads: make(map[domain.ThreadId]*threadDoc),
		postIdx: make(map[domain.PostId]domain.ThreadId),
	}
}

func (s *Storage) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Storage) Cleanup() error {
	return nil
}

func cloneVotes(votes domain.VoteMap) domain.VoteMap {
	out := make(domain.VoteMap, len(votes))
	for k, v := range votes {
		out[k] = v
	}
	return out
}

func clonePost(p *domain.Post) domain.Post {
	out := *p
	out.ChildIds = append(domain.ChildIds{}, p.ChildIds...)
	out.Votes = cloneVotes(p.Votes)
	if p.Content != nil {
		c := *p.Content
		out.Content = &c
	}
	if p.ImageRef != nil {
		r := *p.ImageRef
		out.ImageRef = &r
	}
	if p.ParentId != nil {
		id := *p.ParentId
		out.ParentId = &id
	}
	return out
}

func (d *threadDoc) summary() domain.ThreadMetadata {
	m := d.metadata
	m.NumPosts = len(d.posts)
	m.Votes = cloneVotes(d.metadata.Votes)
	return m
}

func (d *threadDoc) post(id domain.PostId) *domain.Post {
	for _, p := range d.posts {
		if p.Id == id {
			return p
		}
	}
	return nil
}

// lookupPost finds a post in any thread. Caller holds the lock.
func (s *Storage) lookupPost(id domain.PostId) (*threadDoc, *domain.Post, bool) {
	threadId, ok := s.postIdx[id]
	if !ok {
		return nil, nil, false
	}
	doc := s.threads[threadId]
	return doc, doc.post(id), true
}
