package memory

import (
	"context"

	"github.com/itchan-dev/agora/shared/domain"
	internal_errors "github.com/itchan-dev/agora/shared/errors"
)

// votesOf returns a pointer to the target's vote map. Caller holds the lock.
func (s *Storage) votesOf(target domain.VoteTarget, id string) (*domain.VoteMap, error) {
	if target == domain.ThreadVotes {
		doc, ok := s.threads[id]
		if !ok {
			return nil, internal_errors.NotFound("thread")
		}
		return &doc.metadata.Votes, nil
	}
	_, p, ok := s.lookupPost(id)
	if !ok {
		return nil, internal_errors.NotFound("post")
	}
	return &p.Votes, nil
}

func (s *Storage) CastVote(ctx context.Context, target domain.VoteTarget, id string, userId domain.UserId, dir domain.VoteValue) (domain.VoteValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	votes, err := s.votesOf(target, id)
	if err != nil {
		return 0, err
	}
	if *votes == nil {
		*votes = domain.VoteMap{}
	}
	value := domain.ResolveVote((*votes)[userId], dir)
	(*votes)[userId] = value
	return value, nil
}

func (s *Storage) GetVote(ctx context.Context, target domain.VoteTarget, id string, userId domain.UserId) (domain.VoteValue, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	votes, err := s.votesOf(target, id)
	if err != nil {
		return 0, false, err
	}
	v, ok := (*votes)[userId]
	return v, ok, nil
}

func (s *Storage) Tally(ctx context.Context, target domain.VoteTarget, id string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	votes, err := s.votesOf(target, id)
	if err != nil {
		return 0, err
	}
	return votes.Tally(), nil
}
