package domain

// EventType names an event for subject/channel routing.
type EventType string

const (
	EventPostCreated    EventType = "post.created"
	EventVoteCast       EventType = "vote.cast"
	EventThreadVoteCast EventType = "thread.vote.cast"
	EventPostDeleted    EventType = "post.deleted"
)

// Event is a pure data notification for real-time fan-out.
type Event interface {
	Type() EventType
}

type PostCreated struct {
	ThreadId ThreadId `json:"thread_id"`
	Post     Post     `json:"post"`
}

type VoteCast struct {
	PostId         PostId    `json:"post_id"`
	UserId         UserId    `json:"user_id"`
	ResultingValue VoteValue `json:"resulting_value"`
}

type ThreadVoteCast struct {
	ThreadId       ThreadId  `json:"thread_id"`
	UserId         UserId    `json:"user_id"`
	ResultingValue VoteValue `json:"resulting_value"`
}

type PostDeleted struct {
	ThreadId ThreadId `json:"thread_id"`
	PostId   PostId   `json:"post_id"`
}

func (PostCreated) Type() EventType    { return EventPostCreated }
func (VoteCast) Type() EventType       { return EventVoteCast }
func (ThreadVoteCast) Type() EventType { return EventThreadVoteCast }
func (PostDeleted) Type() EventType    { return EventPostDeleted }
