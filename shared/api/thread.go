package api

import (
	"github.com/itchan-dev/agora/shared/domain"
)

// Request DTOs

type CreateThreadRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body"`
}

// Response DTOs

type CreateThreadResponse struct {
	Id domain.ThreadId `json:"id"`
}

// ThreadResponse wraps a full thread with posts
type ThreadResponse struct {
	domain.Thread
}

// ThreadSummariesResponse is the metadata-only listing; posts are never included.
type ThreadSummariesResponse struct {
	Threads []domain.ThreadMetadata `json:"threads"`
}
