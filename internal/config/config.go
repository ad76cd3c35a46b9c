package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	App         AppConfig         `json:"app"`
	Feed        FeedConfig        `json:"feed"`
	Aggregation AggregationConfig `json:"aggregation"`
	Repository  RepositoryConfig  `json:"repository"`
	Cache       CacheConfig       `json:"cache"`
}

type AppConfig struct {
	Port int `json:"port"`
}

type FeedConfig struct {
	URL           string        `json:"url"`
	APIKey        string        `json:"api_key"`
	BoundingBoxes [][][]float64 `json:"bounding_boxes"`
	MessageTypes  []string      `json:"message_types"`
}

// CategoryRange overrides one classifier range from configuration. Min and
// Max are inclusive.
type CategoryRange struct {
	Category string `json:"category"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
}

type AggregationConfig struct {
	WindowSeconds  int             `json:"window_seconds"`
	RetentionDays  int             `json:"retention_days"`
	CategoryRanges []CategoryRange `json:"category_ranges,omitempty"`
}

type RepositoryConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	SSLMode      string `json:"sslmode"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

type CacheConfig struct {
	RedisHost     string `json:"redis_host"`
	RedisPort     int    `json:"redis_port"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	PoolSize      int    `json:"pool_size"`
	MinIdleConns  int    `json:"min_idle_conns"`
}

// GetConfig loads the JSON config file, fills in defaults, and applies the
// AISSTREAM_API_KEY environment override.
func GetConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if key := os.Getenv("AISSTREAM_API_KEY"); key != "" {
		cfg.Feed.APIKey = key
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{Port: 8080},
		Feed: FeedConfig{
			URL:          "wss://stream.aisstream.io/v0/stream",
			MessageTypes: []string{"PositionReport", "ShipStaticData"},
		},
		Aggregation: AggregationConfig{
			WindowSeconds: 60,
			RetentionDays: 30,
		},
		Repository: RepositoryConfig{
			Host:         "localhost",
			Port:         5432,
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Cache: CacheConfig{
			RedisHost: "localhost",
			RedisPort: 6379,
			PoolSize:  10,
		},
	}
}

func (c *Config) validate() error {
	if c.Aggregation.WindowSeconds <= 0 {
		return fmt.Errorf("aggregation.window_seconds must be positive, got %d", c.Aggregation.WindowSeconds)
	}
	if c.Feed.APIKey == "" {
		return fmt.Errorf("feed.api_key is required (or set AISSTREAM_API_KEY)")
	}
	if len(c.Feed.BoundingBoxes) == 0 {
		return fmt.Errorf("feed.bounding_boxes must contain at least one box")
	}
	for _, r := range c.Aggregation.CategoryRanges {
		if r.Min > r.Max {
			return fmt.Errorf("category range for %s has min %d > max %d", r.Category, r.Min, r.Max)
		}
	}
	return nil
}
