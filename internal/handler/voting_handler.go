package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"civitas/internal/domain"
	"civitas/internal/service"
)

// VotingHandler exposes vote casting, retraction, tallies, and the
// per-legislator scores derived from the voting record.
type VotingHandler struct {
	service *service.CivicService
}

func NewVotingHandler(svc *service.CivicService) *VotingHandler {
	return &VotingHandler{service: svc}
}

type castVoteRequest struct {
	Vote string `json:"vote"`
}

// CastVote handles POST /api/v1/bills/{billID}/vote.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "User identity required")
		return
	}

	billID, err := uuid.Parse(chi.URLParam(r, "billID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid bill id")
		return
	}

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	vote, err := domain.ParseVote(req.Vote)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	bill, err := h.service.CastVote(r.Context(), userID, billID, vote)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	// The stored field belongs to whichever user wrote last; the response
	// always reflects the caster's own vote.
	bill.UserVote = &vote
	respondJSON(w, http.StatusOK, bill)
}

// RetractVote handles DELETE /api/v1/bills/{billID}/vote.
func (h *VotingHandler) RetractVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "User identity required")
		return
	}

	billID, err := uuid.Parse(chi.URLParam(r, "billID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid bill id")
		return
	}

	bill, err := h.service.RetractVote(r.Context(), userID, billID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	bill.UserVote = nil
	respondJSON(w, http.StatusOK, bill)
}

// GetTally handles GET /api/v1/bills/{billID}/tally.
func (h *VotingHandler) GetTally(w http.ResponseWriter, r *http.Request) {
	billID, err := uuid.Parse(chi.URLParam(r, "billID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid bill id")
		return
	}

	tally, err := h.service.BillTally(r.Context(), billID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tally)
}

type scoresResponse struct {
	LegislatorID string   `json:"legislator_id"`
	Alignment    *float64 `json:"alignment"`
	Attendance   *float64 `json:"attendance"`
}

// GetScores handles GET /api/v1/legislators/{legislatorID}/scores. A null
// score means there is no voting record to score against.
func (h *VotingHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	legislatorID, err := uuid.Parse(chi.URLParam(r, "legislatorID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid legislator id")
		return
	}

	resp := scoresResponse{LegislatorID: legislatorID.String()}

	attendance, present, err := h.service.AttendanceScore(r.Context(), legislatorID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if present {
		resp.Attendance = &attendance
	}

	if userID, ok := getUserID(r); ok {
		alignment, present, err := h.service.AlignmentScore(r.Context(), legislatorID, userID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		if present {
			resp.Alignment = &alignment
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
