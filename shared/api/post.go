package api

import (
	"github.com/itchan-dev/agora/shared/domain"
)

// Request DTOs

type CreatePostRequest struct {
	Content  string           `json:"content" validate:"required"`
	ImageRef *domain.ImageRef `json:"image_ref,omitempty" validate:"omitempty,url"`
	ParentId *domain.PostId   `json:"parent_id,omitempty"`
}

// Response DTOs

type PostResponse struct {
	domain.Post
}

type PostsResponse struct {
	Posts []domain.Post `json:"posts"`
}

type ChildrenResponse struct {
	PostId   domain.PostId   `json:"post_id"`
	ChildIds []domain.PostId `json:"child_ids"`
}
