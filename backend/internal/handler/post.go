package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/agora/shared/api"
	"github.com/itchan-dev/agora/shared/domain"
	mw "github.com/itchan-dev/agora/shared/middleware"
	"github.com/itchan-dev/agora/shared/utils"
)

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userId, ok := mw.GetUserIdFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body api.CreatePostRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.post.CreatePost(r.Context(), domain.PostCreationData{
		ThreadId: chi.URLParam(r, "thread"),
		Owner:    userId,
		Content:  body.Content,
		ImageRef: body.ImageRef,
		ParentId: body.ParentId,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, api.PostResponse{Post: post})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.post.GetPost(r.Context(), chi.URLParam(r, "thread"), chi.URLParam(r, "post"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.PostResponse{Post: post})
}

// FindPost serves a post by id alone, for clients that only hold a post link.
func (h *Handler) FindPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.post.FindPost(r.Context(), chi.URLParam(r, "post"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.PostResponse{Post: post})
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.post.ListPosts(r.Context(), chi.URLParam(r, "thread"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.PostsResponse{Posts: posts})
}

func (h *Handler) GetChildren(w http.ResponseWriter, r *http.Request) {
	postId := chi.URLParam(r, "post")
	children, err := h.post.GetChildren(r.Context(), postId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ChildrenResponse{PostId: postId, ChildIds: children})
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.post.SoftDelete(r.Context(), chi.URLParam(r, "thread"), chi.URLParam(r, "post")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
