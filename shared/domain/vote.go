package domain

// VoteValue is a recorded vote. Only -1, 0 and +1 are ever stored.
type VoteValue int8

const (
	Downvote VoteValue = -1
	Neutral  VoteValue = 0
	Upvote   VoteValue = 1
)

// IsDirection reports whether v may be cast (0 is a result, never an input).
func (v VoteValue) IsDirection() bool {
	return v == Upvote || v == Downvote
}

// ResolveVote returns the value stored when dir is cast over current.
// Casting the opposite of an existing vote undoes it instead of flipping it.
func ResolveVote(current, dir VoteValue) VoteValue {
	if current+dir == 0 {
		return Neutral
	}
	return dir
}

// VoteMap holds at most one vote per user. A missing key means the user
// never voted, which is not the same as a stored 0.
type VoteMap map[UserId]VoteValue

func (m VoteMap) Tally() int {
	total := 0
	for _, v := range m {
		total += int(v)
	}
	return total
}

// VoteTarget selects whose vote map a ledger operation addresses.
type VoteTarget int

const (
	PostVotes VoteTarget = iota
	ThreadVotes
)

func (t VoteTarget) String() string {
	if t == ThreadVotes {
		return "thread"
	}
	return "post"
}
