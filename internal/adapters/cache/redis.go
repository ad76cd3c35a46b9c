// Package cache holds the redis read-side cache for the status API: the
// latest closed window plus a short per-category time series of counts. The
// engine never depends on it; the server runs without it when redis is
// down.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"vesselwatch/internal/core/domain"
	"vesselwatch/internal/core/port"
)

const (
	latestSummaryKey = "summary:latest"
	countsKeyPrefix  = "summary:counts:"
	summaryTTL       = 24 * time.Hour
)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) port.Cache {
	return &RedisAdapter{
		client: client,
	}
}

// SetLatestSummary stores the summary under the latest key and appends each
// category count to its sorted-set time series, scored by window end.
func (r *RedisAdapter) SetLatestSummary(ctx context.Context, summary domain.WindowSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := r.client.Set(ctx, latestSummaryKey, data, summaryTTL).Err(); err != nil {
		return fmt.Errorf("failed to set latest summary: %w", err)
	}

	score := float64(summary.End.Unix())
	for _, category := range domain.Categories {
		key := countsKeyPrefix + string(category)
		member := fmt.Sprintf("%d:%d", summary.End.Unix(), summary.Counts[category])

		if err := r.client.ZAdd(ctx, key, redis.Z{
			Score:  score,
			Member: member,
		}).Err(); err != nil {
			return fmt.Errorf("failed to add count for %s: %w", category, err)
		}

		r.client.Expire(ctx, key, summaryTTL)
	}

	return nil
}

// GetLatestSummary returns the most recently cached summary, or (nil, nil)
// when none has been stored yet. Errors mean redis itself failed.
func (r *RedisAdapter) GetLatestSummary(ctx context.Context) (*domain.WindowSummary, error) {
	data, err := r.client.Get(ctx, latestSummaryKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest summary: %w", err)
	}

	var summary domain.WindowSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	return &summary, nil
}

// CountsInRange returns the cached counts for one category whose window end
// falls inside [from, to], oldest first.
func (r *RedisAdapter) CountsInRange(ctx context.Context, category domain.Category, from, to time.Time) ([]int, error) {
	key := countsKeyPrefix + string(category)

	results, err := r.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: strconv.FormatInt(from.Unix(), 10),
		Max: strconv.FormatInt(to.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get counts in range: %w", err)
	}

	counts := make([]int, 0, len(results))
	for _, member := range results {
		parts := strings.SplitN(member, ":", 2)
		if len(parts) != 2 {
			continue
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		counts = append(counts, count)
	}

	return counts, nil
}

// CleanupOldData trims time-series entries older than the given age.
func (r *RedisAdapter) CleanupOldData(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan).Unix()
	max := strconv.FormatInt(cutoff, 10)

	for _, category := range domain.Categories {
		key := countsKeyPrefix + string(category)
		if err := r.client.ZRemRangeByScore(ctx, key, "-inf", max).Err(); err != nil {
			return fmt.Errorf("failed to cleanup counts for %s: %w", category, err)
		}
	}

	return nil
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
