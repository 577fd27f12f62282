package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"civitas/internal/service"
)

// CommentHandler exposes a bill's threaded discussion.
type CommentHandler struct {
	service *service.CivicService
}

func NewCommentHandler(svc *service.CivicService) *CommentHandler {
	return &CommentHandler{service: svc}
}

// ListComments handles GET /api/v1/bills/{billID}/comments.
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	billID, err := uuid.Parse(chi.URLParam(r, "billID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid bill id")
		return
	}

	forest, err := h.service.BillComments(r.Context(), billID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"comments": forest,
	})
}

type addCommentRequest struct {
	Author   string     `json:"author"`
	Text     string     `json:"text"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// AddComment handles POST /api/v1/bills/{billID}/comments. A parent_id in
// the body makes the new comment a reply; omitting it starts a new thread.
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	billID, err := uuid.Parse(chi.URLParam(r, "billID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid bill id")
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	comment, err := h.service.AddComment(r.Context(), billID, req.ParentID, req.Author, req.Text)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// ToggleUpvote handles POST /api/v1/bills/{billID}/comments/{commentID}/upvote.
func (h *CommentHandler) ToggleUpvote(w http.ResponseWriter, r *http.Request) {
	billID, err := uuid.Parse(chi.URLParam(r, "billID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid bill id")
		return
	}

	commentID, err := uuid.Parse(chi.URLParam(r, "commentID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid comment id")
		return
	}

	comment, err := h.service.ToggleUpvote(r.Context(), billID, commentID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, comment)
}
