package health

import (
	"context"
	"time"

	"vesselwatch/internal/core/port"
	"vesselwatch/internal/core/service/aggregation"
)

type HealthService struct {
	healthRepo port.HealthRepository
	cache      port.Cache
	feed       port.Feed
	engine     *aggregation.Engine
}

func NewHealthService(
	healthRepo port.HealthRepository,
	cache port.Cache,
	feed port.Feed,
	engine *aggregation.Engine,
) port.HealthService {
	return &HealthService{
		healthRepo: healthRepo,
		cache:      cache,
		feed:       feed,
		engine:     engine,
	}
}

func (h *HealthService) GetSystemHealth(ctx context.Context) map[string]interface{} {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	dbHealthy := h.checkDatabaseHealth(ctx)
	feedHealthy := h.checkFeedHealth()

	// The cache is optional; only the database and the feed gate overall
	// status.
	if !dbHealthy || !feedHealthy {
		health["status"] = "unhealthy"
	}

	health["database"] = map[string]interface{}{
		"status": getStatusString(dbHealthy),
	}
	health["cache"] = map[string]interface{}{
		"status": getStatusString(h.checkCacheHealth(ctx)),
	}
	health["feed"] = map[string]interface{}{
		"status": getStatusString(feedHealthy),
	}

	return health
}

func (h *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	dbHealth := h.getDetailedDatabaseHealth(ctx)
	cacheHealth := h.getDetailedCacheHealth(ctx)
	feedHealth := h.getDetailedFeedHealth()

	health["database"] = dbHealth
	health["cache"] = cacheHealth
	health["feed"] = feedHealth

	if h.engine != nil {
		health["aggregation"] = h.engine.Stats()
	} else {
		health["aggregation"] = map[string]interface{}{
			"status": "unavailable",
		}
	}

	overall := "healthy"
	if dbHealth["status"] != "healthy" || feedHealth["status"] != "healthy" {
		overall = "unhealthy"
	}
	health["overall_status"] = overall

	return health
}

// Private helper methods

func (h *HealthService) checkDatabaseHealth(ctx context.Context) bool {
	if h.healthRepo == nil {
		return false
	}

	return h.healthRepo.CheckDatabaseHealth(ctx) == nil
}

func (h *HealthService) checkCacheHealth(ctx context.Context) bool {
	if h.cache == nil {
		return false
	}

	return h.cache.Ping(ctx) == nil
}

func (h *HealthService) checkFeedHealth() bool {
	if h.feed == nil {
		return false
	}

	return h.feed.IsHealthy()
}

func (h *HealthService) getDetailedDatabaseHealth(ctx context.Context) map[string]interface{} {
	dbHealth := map[string]interface{}{}

	if h.healthRepo == nil {
		dbHealth["status"] = "unavailable"
		dbHealth["reason"] = "repository not initialized"
		return dbHealth
	}

	if err := h.healthRepo.CheckDatabaseHealth(ctx); err != nil {
		dbHealth["status"] = "unhealthy"
		dbHealth["error"] = err.Error()
	} else {
		dbHealth["status"] = "healthy"
		dbHealth["connection"] = "active"
	}

	return dbHealth
}

func (h *HealthService) getDetailedCacheHealth(ctx context.Context) map[string]interface{} {
	cacheHealth := map[string]interface{}{}

	if h.cache == nil {
		cacheHealth["status"] = "unavailable"
		cacheHealth["reason"] = "cache not initialized"
		return cacheHealth
	}

	if err := h.cache.Ping(ctx); err != nil {
		cacheHealth["status"] = "unhealthy"
		cacheHealth["error"] = err.Error()
	} else {
		cacheHealth["status"] = "healthy"
		cacheHealth["connection"] = "active"
	}

	return cacheHealth
}

func (h *HealthService) getDetailedFeedHealth() map[string]interface{} {
	feedHealth := map[string]interface{}{}

	if h.feed == nil {
		feedHealth["status"] = "unavailable"
		feedHealth["reason"] = "feed not initialized"
		return feedHealth
	}

	feedHealth["status"] = getStatusString(h.feed.IsHealthy())
	feedHealth["stats"] = h.feed.Stats()

	return feedHealth
}

func getStatusString(healthy bool) string {
	if healthy {
		return "healthy"
	}
	return "unhealthy"
}
