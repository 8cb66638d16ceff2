package domain

import (
	"time"
)

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Owner UserId
	Title ThreadTitle
	Body  string
}

type ThreadMetadata struct {
	Id        ThreadId    `json:"id"`
	Owner     UserId      `json:"owner"`
	Title     ThreadTitle `json:"title"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"created_at"`
	NumPosts  int         `json:"num_posts"`
	Votes     VoteMap     `json:"votes"`
}

type Thread struct {
	ThreadMetadata
	Posts []Post `json:"posts"` // creation order
}

// Post returns the post with the given id, if the thread holds it.
func (t *Thread) Post(id PostId) (*Post, bool) {
	for i := range t.Posts {
		if t.Posts[i].Id == id {
			return &t.Posts[i], true
		}
	}
	return nil, false
}
