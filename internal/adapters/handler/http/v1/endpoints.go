package v1

import "net/http"

// SetRoutes sets up all API routes.
func SetRoutes(router *http.ServeMux, windowsHandler *WindowsHandler, statusHandler *StatusHandler, healthHandler *HealthHandler) {
	// Window summary routes
	setWindowRoutes(windowsHandler, router)

	// Pipeline status routes
	setStatusRoutes(statusHandler, router)

	// System health routes
	setHealthRoutes(healthHandler, router)
}

func setWindowRoutes(handler *WindowsHandler, router *http.ServeMux) {
	router.HandleFunc("GET /windows/recent", handler.GetRecentWindows) // ?limit={n}
	router.HandleFunc("GET /windows/latest", handler.GetLatestWindow)
	router.HandleFunc("GET /windows/counts/{category}", handler.GetCategoryCounts) // ?period={duration}
}

func setStatusRoutes(handler *StatusHandler, router *http.ServeMux) {
	router.HandleFunc("GET /status", handler.GetStatus)
}

func setHealthRoutes(handler *HealthHandler, router *http.ServeMux) {
	router.HandleFunc("GET /health", handler.GetSystemHealth)
	router.HandleFunc("GET /health/detailed", handler.GetDetailedHealth)
}
