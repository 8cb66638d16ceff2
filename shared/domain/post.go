package domain

import (
	"time"
)

type PostCreationData struct {
	ThreadId ThreadId
	Owner    UserId
	Content  PostText
	ImageRef *ImageRef
	ParentId *PostId // nil for a root post
}

type Post struct {
	Id        PostId    `json:"id"`
	ThreadId  ThreadId  `json:"thread_id"`
	Owner     UserId    `json:"owner"`
	Content   *PostText `json:"content"`
	ImageRef  *ImageRef `json:"image_ref"`
	CreatedAt time.Time `json:"created_at"`
	ParentId  *PostId   `json:"parent_id"`
	ChildIds  ChildIds  `json:"child_ids"`
	Votes     VoteMap   `json:"votes"`
	Deleted   bool      `json:"deleted"`
}

func (p *Post) IsRoot() bool {
	return p.ParentId == nil
}

// ContentText is the post body, empty once the post was deleted.
func (p *Post) ContentText() string {
	if p.Content == nil {
		return ""
	}
	return *p.Content
}

func (p *Post) HasChild(id PostId) bool {
	for _, c := range p.ChildIds {
		if c == id {
			return true
		}
	}
	return false
}

// PostLink is a parent/child pair whose link is missing from the
// parent's child sequence.
type PostLink struct {
	ThreadId ThreadId
	ParentId PostId
	ChildId  PostId
}
