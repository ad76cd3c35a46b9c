package v1

import (
	"net/http"
	"strconv"
	"time"

	"vesselwatch/internal/core/domain"
	"vesselwatch/internal/core/port"
)

const defaultRecentLimit = 100

type WindowsHandler struct {
	repository port.SummaryRepository
	cache      port.Cache
}

func NewWindowsHandler(repository port.SummaryRepository, cache port.Cache) *WindowsHandler {
	return &WindowsHandler{
		repository: repository,
		cache:      cache,
	}
}

// GetRecentWindows handles GET /windows/recent?limit={n} and, when from/to
// are given as RFC 3339 instants, GET /windows/recent?from={t}&to={t}.
func (h *WindowsHandler) GetRecentWindows(w http.ResponseWriter, r *http.Request) {
	if h.repository == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "repository is not available")
		return
	}

	var (
		summaries []domain.WindowSummary
		err       error
	)

	rawFrom, rawTo := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	switch {
	case rawFrom != "" || rawTo != "":
		from, parseErr := time.Parse(time.RFC3339, rawFrom)
		if parseErr != nil {
			writeErrorResponse(w, http.StatusBadRequest, "from must be an RFC 3339 timestamp")
			return
		}
		to, parseErr := time.Parse(time.RFC3339, rawTo)
		if parseErr != nil {
			writeErrorResponse(w, http.StatusBadRequest, "to must be an RFC 3339 timestamp")
			return
		}
		if !from.Before(to) {
			writeErrorResponse(w, http.StatusBadRequest, "from must precede to")
			return
		}
		summaries, err = h.repository.SummariesInRange(r.Context(), from, to)
	default:
		limit := defaultRecentLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, atoiErr := strconv.Atoi(raw)
			if atoiErr != nil || parsed <= 0 {
				writeErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = parsed
		}
		summaries, err = h.repository.RecentSummaries(r.Context(), limit)
	}

	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "failed to get recent windows: "+err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"count":   len(summaries),
		"windows": summaries,
	})
}

// GetCategoryCounts handles GET /windows/counts/{category}?period={duration},
// served from the cached count time series.
func (h *WindowsHandler) GetCategoryCounts(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "cache is not available")
		return
	}

	category := domain.Category(r.PathValue("category"))
	if !validCategory(category) {
		writeErrorResponse(w, http.StatusBadRequest, "unknown category: "+string(category))
		return
	}

	period := time.Hour
	if raw := r.URL.Query().Get("period"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "period must be a positive duration like 30m or 2h")
			return
		}
		period = parsed
	}

	now := time.Now().UTC()
	counts, err := h.cache.CountsInRange(r.Context(), category, now.Add(-period), now)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "failed to get counts: "+err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"period":   period.String(),
		"counts":   counts,
	})
}

func validCategory(category domain.Category) bool {
	for _, c := range domain.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// GetLatestWindow handles GET /windows/latest, served from the redis cache.
func (h *WindowsHandler) GetLatestWindow(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "cache is not available")
		return
	}

	summary, err := h.cache.GetLatestSummary(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "failed to get latest window: "+err.Error())
		return
	}
	if summary == nil {
		writeErrorResponse(w, http.StatusNotFound, "no window closed yet")
		return
	}

	writeJSONResponse(w, http.StatusOK, summary)
}
