package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetConfigDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"feed": {
			"api_key": "secret",
			"bounding_boxes": [[[1, 103], [2, 105]]]
		}
	}`)

	cfg, err := GetConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "wss://stream.aisstream.io/v0/stream", cfg.Feed.URL)
	assert.Equal(t, []string{"PositionReport", "ShipStaticData"}, cfg.Feed.MessageTypes)
	assert.Equal(t, 60, cfg.Aggregation.WindowSeconds)
	assert.Equal(t, "disable", cfg.Repository.SSLMode)
}

func TestGetConfigOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"app": {"port": 9000},
		"feed": {
			"api_key": "secret",
			"bounding_boxes": [[[49, -6], [52, 3]]]
		},
		"aggregation": {"window_seconds": 120, "retention_days": 7}
	}`)

	cfg, err := GetConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, 120, cfg.Aggregation.WindowSeconds)
	assert.Equal(t, 7, cfg.Aggregation.RetentionDays)
}

func TestGetConfigAPIKeyFromEnv(t *testing.T) {
	path := writeConfig(t, `{
		"feed": {"bounding_boxes": [[[1, 103], [2, 105]]]}
	}`)

	t.Setenv("AISSTREAM_API_KEY", "from-env")

	cfg, err := GetConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Feed.APIKey)
}

func TestGetConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing api key",
			content: `{
				"feed": {"bounding_boxes": [[[1, 103], [2, 105]]]}
			}`,
		},
		{
			name: "missing bounding boxes",
			content: `{
				"feed": {"api_key": "secret"}
			}`,
		},
		{
			name: "zero window",
			content: `{
				"feed": {"api_key": "secret", "bounding_boxes": [[[1, 103], [2, 105]]]},
				"aggregation": {"window_seconds": 0}
			}`,
		},
		{
			name: "inverted category range",
			content: `{
				"feed": {"api_key": "secret", "bounding_boxes": [[[1, 103], [2, 105]]]},
				"aggregation": {"window_seconds": 60, "category_ranges": [{"category": "Cargo", "min": 80, "max": 70}]}
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AISSTREAM_API_KEY", "")
			_, err := GetConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
