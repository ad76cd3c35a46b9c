package v1

import (
	"net/http"

	"vesselwatch/internal/core/port"
)

type HealthHandler struct {
	healthService port.HealthService
}

func NewHealthHandler(
	healthService port.HealthService,
) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

func (h *HealthHandler) GetSystemHealth(w http.ResponseWriter, r *http.Request) {
	if h.healthService == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "health service is not available")
		return
	}

	healthStatus := h.healthService.GetSystemHealth(r.Context())

	statusCode := http.StatusOK
	if status, ok := healthStatus["status"].(string); ok && status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, statusCode, healthStatus)
}

func (h *HealthHandler) GetDetailedHealth(w http.ResponseWriter, r *http.Request) {
	if h.healthService == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "health service is not available")
		return
	}

	detailedHealth := h.healthService.GetDetailedHealth(r.Context())

	statusCode := http.StatusOK
	if status, ok := detailedHealth["overall_status"].(string); ok && status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, statusCode, detailedHealth)
}
