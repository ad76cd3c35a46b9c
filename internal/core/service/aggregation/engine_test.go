package aggregation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vesselwatch/internal/core/domain"
)

type captureSink struct {
	summaries []domain.WindowSummary
	err       error
}

func (s *captureSink) Persist(_ context.Context, summary domain.WindowSummary) error {
	s.summaries = append(s.summaries, summary)
	return s.err
}

func position(mmsi int64, clock string) domain.VesselEvent {
	return domain.VesselEvent{
		Kind:     domain.EventKindPosition,
		VesselID: mmsi,
		Time:     "2025-12-29 " + clock + " +0000 UTC",
	}
}

func metadata(mmsi int64, typeCode int) domain.VesselEvent {
	return domain.VesselEvent{
		Kind:        domain.EventKindMetadata,
		VesselID:    mmsi,
		TypeCode:    typeCode,
		HasTypeCode: true,
	}
}

func newTestEngine(sink *captureSink) *Engine {
	return NewEngine(domain.DefaultTypeRanges(), 60*time.Second, sink)
}

func TestEngineCargoScenario(t *testing.T) {
	sink := &captureSink{}
	engine := newTestEngine(sink)
	ctx := context.Background()

	engine.Handle(ctx, metadata(111, 72))
	engine.Handle(ctx, position(111, "10:00:05"))
	engine.Handle(ctx, position(111, "10:00:40"))
	engine.Handle(ctx, position(111, "10:01:05"))

	require.Len(t, sink.summaries, 1)
	summary := sink.summaries[0]
	assert.True(t, summary.Start.Equal(at(t, "10:00:00")))
	assert.True(t, summary.End.Equal(at(t, "10:01:00")))
	assert.Equal(t, 1, summary.Counts[domain.CategoryCargo])
	for _, c := range domain.Categories {
		if c == domain.CategoryCargo {
			continue
		}
		assert.Equal(t, 0, summary.Counts[c])
	}

	// Vessel 111 carried into the new window.
	stats := engine.Stats()
	assert.Equal(t, int64(1), stats["windows_completed"])
	assert.Equal(t, 1, stats["current_window_vessels"])
}

func TestEngineClassifiesFromCachedMetadata(t *testing.T) {
	sink := &captureSink{}
	engine := newTestEngine(sink)
	ctx := context.Background()

	// Static data arrives before any position report for the vessel.
	engine.Handle(ctx, metadata(222, 85))
	engine.Handle(ctx, position(222, "10:00:10"))

	require.NoError(t, engine.ForceClose(ctx, at(t, "10:01:00")))
	require.Len(t, sink.summaries, 1)
	assert.Equal(t, 1, sink.summaries[0].Counts[domain.CategoryTanker])
	assert.Equal(t, 0, sink.summaries[0].Counts[domain.CategoryUnknown])
}

func TestEngineUnknownWithoutMetadata(t *testing.T) {
	sink := &captureSink{}
	engine := newTestEngine(sink)
	ctx := context.Background()

	engine.Handle(ctx, position(222, "10:00:10"))

	require.NoError(t, engine.ForceClose(ctx, at(t, "10:01:00")))
	require.Len(t, sink.summaries, 1)
	assert.Equal(t, 1, sink.summaries[0].Counts[domain.CategoryUnknown])
	assert.Equal(t, 0, sink.summaries[0].Counts[domain.CategoryTanker])
}

func TestEngineMetadataArrivingMidWindowReclassifies(t *testing.T) {
	sink := &captureSink{}
	engine := newTestEngine(sink)
	ctx := context.Background()

	engine.Handle(ctx, position(333, "10:00:10"))
	engine.Handle(ctx, metadata(333, 31))
	// Same vessel, same window: now classified as Fishing, counted in both
	// category sets it was seen under.
	engine.Handle(ctx, position(333, "10:00:20"))

	require.NoError(t, engine.ForceClose(ctx, at(t, "10:01:00")))
	require.Len(t, sink.summaries, 1)
	assert.Equal(t, 1, sink.summaries[0].Counts[domain.CategoryUnknown])
	assert.Equal(t, 1, sink.summaries[0].Counts[domain.CategoryFishing])
}

func TestEngineIgnoresIncompleteEvents(t *testing.T) {
	sink := &captureSink{}
	engine := newTestEngine(sink)
	ctx := context.Background()

	engine.Handle(ctx, domain.VesselEvent{Kind: domain.EventKindPosition, VesselID: 111})
	engine.Handle(ctx, domain.VesselEvent{Kind: domain.EventKindPosition, Time: "2025-12-29 10:00:05 +0000"})
	engine.Handle(ctx, domain.VesselEvent{Kind: domain.EventKindMetadata, VesselID: 111})
	engine.Handle(ctx, domain.VesselEvent{Kind: domain.EventKindMetadata, TypeCode: 70, HasTypeCode: true})
	engine.Handle(ctx, domain.VesselEvent{Kind: "AddressedSafetyMessage", VesselID: 111})

	stats := engine.Stats()
	assert.Equal(t, int64(5), stats["messages_processed"])
	assert.Equal(t, 0, stats["cached_vessels"])
	assert.Equal(t, 0, stats["current_window_vessels"])

	require.NoError(t, engine.ForceClose(ctx, at(t, "10:01:00")))
	assert.Empty(t, sink.summaries)
}

func TestEngineDropsMalformedTimestamp(t *testing.T) {
	sink := &captureSink{}
	engine := newTestEngine(sink)
	ctx := context.Background()

	engine.Handle(ctx, position(111, "10:00:05"))
	engine.Handle(ctx, domain.VesselEvent{
		Kind:     domain.EventKindPosition,
		VesselID: 222,
		Time:     "yesterday around noon",
	})
	engine.Handle(ctx, position(333, "10:00:45"))

	// Window state survived the malformed event.
	require.NoError(t, engine.ForceClose(ctx, at(t, "10:01:00")))
	require.Len(t, sink.summaries, 1)
	assert.Equal(t, 2, sink.summaries[0].Counts[domain.CategoryUnknown])
}

func TestEngineSinkFailureDoesNotStopStream(t *testing.T) {
	sink := &captureSink{err: errors.New("sink down")}
	engine := newTestEngine(sink)
	ctx := context.Background()

	engine.Handle(ctx, position(111, "10:00:05"))
	engine.Handle(ctx, position(111, "10:01:05"))
	engine.Handle(ctx, position(111, "10:02:05"))

	// Both closed windows were offered to the sink despite its failures.
	assert.Len(t, sink.summaries, 2)
	assert.Equal(t, int64(2), engine.Stats()["windows_completed"])
}

func TestEngineForceCloseEmitsOnce(t *testing.T) {
	sink := &captureSink{}
	engine := newTestEngine(sink)
	ctx := context.Background()

	engine.Handle(ctx, position(111, "10:00:05"))

	require.NoError(t, engine.ForceClose(ctx, at(t, "10:00:30")))
	require.Len(t, sink.summaries, 1)

	// Second forced close has nothing to emit.
	require.NoError(t, engine.ForceClose(ctx, at(t, "10:00:45")))
	assert.Len(t, sink.summaries, 1)
}

func TestMetadataCacheLastWriteWins(t *testing.T) {
	cache := NewMetadataCache()

	_, ok := cache.Lookup(111)
	assert.False(t, ok)

	cache.Upsert(111, 70)
	cache.Upsert(111, 85)

	code, ok := cache.Lookup(111)
	require.True(t, ok)
	assert.Equal(t, 85, code)
	assert.Equal(t, 1, cache.Len())
}

// Stats is read from the HTTP and reporting goroutines while the consumer
// goroutine drives Handle; run with -race.
func TestEngineStatsConcurrentWithHandle(t *testing.T) {
	sink := &captureSink{}
	engine := newTestEngine(sink)
	ctx := context.Background()

	base := time.Date(2025, 12, 29, 10, 0, 0, 0, time.UTC)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			mmsi := int64(100 + i%7)
			engine.Handle(ctx, metadata(mmsi, 70+i%30))
			engine.Handle(ctx, domain.VesselEvent{
				Kind:     domain.EventKindPosition,
				VesselID: mmsi,
				Time:     base.Add(time.Duration(i) * time.Second).Format("2006-01-02 15:04:05 -0700"),
			})
		}
	}()

	for {
		select {
		case <-done:
			stats := engine.Stats()
			assert.Equal(t, int64(1000), stats["messages_processed"])
			assert.Equal(t, int64(len(sink.summaries)), stats["windows_completed"])
			return
		default:
			_ = engine.Stats()
		}
	}
}
