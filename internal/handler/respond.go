package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"civitas/internal/domain"
)

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, errType, message string) {
	respondJSON(w, status, errorEnvelope{
		Success: false,
		Error:   errorBody{Type: errType, Message: message},
	})
}

// respondDomainError maps domain errors onto HTTP statuses. Unrecognized
// errors become a 500 without leaking internals.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBillNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Bill not found")
	case errors.Is(err, domain.ErrLegislatorNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Legislator not found")
	case errors.Is(err, domain.ErrCommentNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Comment not found")
	case errors.Is(err, domain.ErrParentNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Parent comment not found")
	case domain.IsValidation(err):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsUpdateFailed(err):
		respondError(w, http.StatusBadGateway, "update_failed", "Failed to persist change")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
