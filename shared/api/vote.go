package api

import (
	"github.com/itchan-dev/agora/shared/domain"
)

type CastVoteRequest struct {
	Direction domain.VoteValue `json:"direction" validate:"required,oneof=-1 1"`
}

type CastVoteResponse struct {
	Value domain.VoteValue `json:"value"`
	Tally int              `json:"tally"`
}

// VotesResponse reports the tally and, when the caller is identified and has
// voted, the caller's own vote. A nil UserVote means "no vote cast".
type VotesResponse struct {
	Tally    int               `json:"tally"`
	UserVote *domain.VoteValue `json:"user_vote"`
}
