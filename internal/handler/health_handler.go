package handler

import (
	"net/http"
	"time"

	"civitas/internal/service"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	service *service.CivicService
}

func NewHealthHandler(svc *service.CivicService) *HealthHandler {
	return &HealthHandler{service: svc}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Service   string    `json:"service"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.service.HealthCheck(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "degraded",
			Timestamp: time.Now().UTC(),
			Version:   "1.0.0",
			Service:   "civitas",
		})
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Service:   "civitas",
	})
}
