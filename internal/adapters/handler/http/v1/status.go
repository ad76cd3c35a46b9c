package v1

import (
	"net/http"
	"time"

	"vesselwatch/internal/core/port"
	"vesselwatch/internal/core/service/aggregation"
)

type StatusHandler struct {
	engine *aggregation.Engine
	feed   port.Feed
}

func NewStatusHandler(engine *aggregation.Engine, feed port.Feed) *StatusHandler {
	return &StatusHandler{
		engine: engine,
		feed:   feed,
	}
}

// GetStatus handles GET /status: engine counters plus feed counters.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if h.engine != nil {
		status["aggregation"] = h.engine.Stats()
	}
	if h.feed != nil {
		status["feed"] = h.feed.Stats()
	}

	writeJSONResponse(w, http.StatusOK, status)
}
