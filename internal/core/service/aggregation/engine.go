// Package aggregation implements the streaming aggregation engine: it
// classifies inbound AIS events, maintains the vessel metadata cache,
// tracks the open counting window, and emits a summary each time a window
// closes.
package aggregation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"vesselwatch/internal/core/domain"
	"vesselwatch/internal/core/port"
)

// Engine routes each inbound event to the metadata cache or the window
// tracker and hands closed windows to the sink. A single consumer goroutine
// drives Handle; the mutex exists so Stats can be served from the HTTP and
// reporting goroutines while the stream is being processed.
type Engine struct {
	ranges   domain.TypeRanges
	metadata *MetadataCache
	tracker  *WindowTracker
	sink     port.SummarySink

	mu                sync.RWMutex
	messagesProcessed int64
	windowsCompleted  int64
}

func NewEngine(ranges domain.TypeRanges, windowDuration time.Duration, sink port.SummarySink) *Engine {
	return &Engine{
		ranges:   ranges,
		metadata: NewMetadataCache(),
		tracker:  NewWindowTracker(windowDuration),
		sink:     sink,
	}
}

// Handle processes a single feed event. Malformed or incomplete events are
// dropped without touching window state; one bad event never aborts
// processing of the rest of the stream.
func (e *Engine) Handle(ctx context.Context, event domain.VesselEvent) {
	e.mu.Lock()
	e.messagesProcessed++

	var closed *domain.WindowSummary
	switch event.Kind {
	case domain.EventKindMetadata:
		e.handleMetadata(event)
	case domain.EventKindPosition:
		closed = e.handlePosition(event)
	default:
		// Unrecognized kinds are ignored.
	}
	e.mu.Unlock()

	// Emit outside the lock so a slow sink never blocks Stats readers.
	if closed != nil {
		e.emit(ctx, *closed)
	}
}

func (e *Engine) handleMetadata(event domain.VesselEvent) {
	if event.VesselID == 0 || !event.HasTypeCode {
		return
	}
	e.metadata.Upsert(event.VesselID, event.TypeCode)
	slog.Debug("Cached vessel metadata", "mmsi", event.VesselID, "type", event.TypeCode)
}

func (e *Engine) handlePosition(event domain.VesselEvent) *domain.WindowSummary {
	if event.VesselID == 0 || event.Time == "" {
		return nil
	}

	t, err := ParseFeedTime(event.Time)
	if err != nil {
		slog.Warn("Dropping position report", "mmsi", event.VesselID, "time", event.Time, "error", err)
		return nil
	}

	code, known := e.metadata.Lookup(event.VesselID)
	category := e.ranges.Classify(code, known)

	return e.tracker.Observe(t, event.VesselID, category)
}

// ForceClose closes the open window with the supplied end instant and emits
// its summary, used on shutdown so the last partial window is not lost.
// With no window open it emits nothing.
func (e *Engine) ForceClose(ctx context.Context, end time.Time) error {
	e.mu.Lock()
	summary, err := e.tracker.ForceClose(end)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if summary != nil {
		e.emit(ctx, *summary)
	}
	return nil
}

func (e *Engine) emit(ctx context.Context, summary domain.WindowSummary) {
	e.mu.Lock()
	e.windowsCompleted++
	e.mu.Unlock()

	slog.Info("Closed window",
		"window_start", summary.Start.Format(time.RFC3339),
		"window_end", summary.End.Format(time.RFC3339),
		"total_vessels", summary.TotalVessels())

	// Fire-and-forget: the sink owns its failure handling.
	if err := e.sink.Persist(ctx, summary); err != nil {
		slog.Error("Failed to persist window summary",
			"window_start", summary.Start.Format(time.RFC3339),
			"error", err)
	}
}

// Stats reports engine counters for the status surface. It is safe to call
// concurrently with Handle.
func (e *Engine) Stats() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := map[string]interface{}{
		"messages_processed":     e.messagesProcessed,
		"windows_completed":      e.windowsCompleted,
		"cached_vessels":         e.metadata.Len(),
		"current_window_vessels": e.tracker.MemberCount(),
	}
	if e.tracker.Active() {
		stats["current_window_start"] = e.tracker.Start().Format(time.RFC3339)
		stats["current_window_end"] = e.tracker.End().Format(time.RFC3339)
	}
	return stats
}
