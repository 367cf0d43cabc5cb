package handlers

import (
	"encoding/json"
	"net/http"

	"community-backend/internal/health"
)

type HealthHandler struct {
	Checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{Checker: checker}
}

// Check is the liveness probe: database ping plus runtime stats
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := h.Checker.CheckBasic()

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}

// Detailed adds host CPU, memory and disk usage. Admin only.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	status := h.Checker.CheckDetailed()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
