package port

import (
	"context"

	"vesselwatch/internal/core/domain"
)

// Feed delivers decoded AIS events from the upstream source. The adapter
// owns the connection, the subscription handshake, and reconnection; the
// engine only ever sees the channel.
type Feed interface {
	// Start streaming events
	Start(ctx context.Context) (<-chan domain.VesselEvent, error)

	// Stop streaming
	Stop() error

	// Feed name/identifier
	Name() string

	// Health check
	IsHealthy() bool

	// Counters for the status surface
	Stats() map[string]interface{}
}
