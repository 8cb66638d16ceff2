package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/agora/shared/api"
	"github.com/itchan-dev/agora/shared/domain"
	mw "github.com/itchan-dev/agora/shared/middleware"
	"github.com/itchan-dev/agora/shared/utils"
)

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	userId, ok := mw.GetUserIdFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body api.CreateThreadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	metadata, err := h.thread.CreateThread(r.Context(), domain.ThreadCreationData{
		Owner: userId,
		Title: body.Title,
		Body:  body.Body,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, api.CreateThreadResponse{Id: metadata.Id})
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.thread.GetThread(r.Context(), chi.URLParam(r, "thread"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ThreadResponse{Thread: thread})
}

func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.thread.ListThreadSummaries(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ThreadSummariesResponse{Threads: threads})
}

func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	if err := h.thread.DeleteThread(r.Context(), chi.URLParam(r, "thread")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
