package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/agora/shared/api"
	"github.com/itchan-dev/agora/shared/domain"
	mw "github.com/itchan-dev/agora/shared/middleware"
	"github.com/itchan-dev/agora/shared/utils"
)

type castFunc func(ctx context.Context, id string, userId domain.UserId, dir domain.VoteValue) (domain.VoteValue, error)
type tallyFunc func(ctx context.Context, id string) (int, error)
type getVoteFunc func(ctx context.Context, id string, userId domain.UserId) (domain.VoteValue, bool, error)

func (h *Handler) castVote(w http.ResponseWriter, r *http.Request, id string, cast castFunc, tally tallyFunc) {
	userId, ok := mw.GetUserIdFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body api.CastVoteRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	value, err := cast(r.Context(), id, userId, body.Direction)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	total, err := tally(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.CastVoteResponse{Value: value, Tally: total})
}

func (h *Handler) getVotes(w http.ResponseWriter, r *http.Request, id string, tally tallyFunc, getVote getVoteFunc) {
	total, err := tally(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := api.VotesResponse{Tally: total}
	if userId, ok := mw.GetUserIdFromContext(r); ok {
		value, voted, err := getVote(r.Context(), id, userId)
		if err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		if voted {
			resp.UserVote = &value
		}
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CastPostVote(w http.ResponseWriter, r *http.Request) {
	h.castVote(w, r, chi.URLParam(r, "post"), h.vote.CastVote, h.vote.Tally)
}

func (h *Handler) GetPostVotes(w http.ResponseWriter, r *http.Request) {
	h.getVotes(w, r, chi.URLParam(r, "post"), h.vote.Tally, h.vote.GetVote)
}

func (h *Handler) CastThreadVote(w http.ResponseWriter, r *http.Request) {
	h.castVote(w, r, chi.URLParam(r, "thread"), h.vote.CastThreadVote, h.vote.ThreadTally)
}

func (h *Handler) GetThreadVotes(w http.ResponseWriter, r *http.Request) {
	h.getVotes(w, r, chi.URLParam(r, "thread"), h.vote.ThreadTally, h.vote.GetThreadVote)
}
