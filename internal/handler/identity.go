package handler

import (
	"net/http"

	"github.com/google/uuid"
)

// userIDHeader carries the caller's identity, injected by an upstream
// auth layer. Requests without it are treated as anonymous.
const userIDHeader = "X-User-ID"

func getUserID(r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
