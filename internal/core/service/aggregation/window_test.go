package aggregation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vesselwatch/internal/core/domain"
)

func at(t *testing.T, clock string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2025-12-29T"+clock+"Z")
	require.NoError(t, err)
	return ts
}

func TestWindowAlignsToMinute(t *testing.T) {
	tracker := NewWindowTracker(60 * time.Second)

	closed := tracker.Observe(at(t, "10:00:05.743205"), 111, domain.CategoryCargo)
	assert.Nil(t, closed)

	require.True(t, tracker.Active())
	assert.True(t, tracker.Start().Equal(at(t, "10:00:00")))
	assert.True(t, tracker.End().Equal(at(t, "10:01:00")))
	assert.Equal(t, 0, tracker.Start().Second())
	assert.Equal(t, 0, tracker.Start().Nanosecond())
	assert.Equal(t, 60*time.Second, tracker.End().Sub(tracker.Start()))
}

func TestWindowDeduplicatesVessels(t *testing.T) {
	tracker := NewWindowTracker(60 * time.Second)

	for _, clock := range []string{"10:00:05", "10:00:10", "10:00:40", "10:00:59"} {
		closed := tracker.Observe(at(t, clock), 111, domain.CategoryCargo)
		assert.Nil(t, closed)
	}

	summary, err := tracker.ForceClose(at(t, "10:01:00"))
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Counts[domain.CategoryCargo])
}

func TestWindowCloseAndReopen(t *testing.T) {
	tracker := NewWindowTracker(60 * time.Second)

	assert.Nil(t, tracker.Observe(at(t, "10:00:05"), 111, domain.CategoryCargo))
	assert.Nil(t, tracker.Observe(at(t, "10:00:40"), 111, domain.CategoryCargo))

	closed := tracker.Observe(at(t, "10:01:05"), 111, domain.CategoryCargo)
	require.NotNil(t, closed)
	assert.True(t, closed.Start.Equal(at(t, "10:00:00")))
	assert.True(t, closed.End.Equal(at(t, "10:01:00")))
	assert.Equal(t, 1, closed.Counts[domain.CategoryCargo])
	for _, c := range domain.Categories {
		if c == domain.CategoryCargo {
			continue
		}
		assert.Equal(t, 0, closed.Counts[c])
	}

	// The triggering event lands in the new window.
	require.True(t, tracker.Active())
	assert.True(t, tracker.Start().Equal(at(t, "10:01:00")))
	assert.True(t, tracker.End().Equal(at(t, "10:02:00")))
	assert.Equal(t, 1, tracker.MemberCount())
}

func TestWindowBoundaryBelongsToNextWindow(t *testing.T) {
	tracker := NewWindowTracker(60 * time.Second)

	tracker.Observe(at(t, "10:00:05"), 111, domain.CategoryCargo)

	// Exactly at the end instant: the old window closes without vessel 222.
	closed := tracker.Observe(at(t, "10:01:00"), 222, domain.CategoryTanker)
	require.NotNil(t, closed)
	assert.Equal(t, 1, closed.Counts[domain.CategoryCargo])
	assert.Equal(t, 0, closed.Counts[domain.CategoryTanker])

	assert.True(t, tracker.Start().Equal(at(t, "10:01:00")))
	assert.Equal(t, 1, tracker.MemberCount())
}

func TestWindowGapBetweenWindows(t *testing.T) {
	tracker := NewWindowTracker(60 * time.Second)

	tracker.Observe(at(t, "10:00:05"), 111, domain.CategoryCargo)

	// A long quiet period: the new window starts at the event's minute,
	// not at the old window's end.
	closed := tracker.Observe(at(t, "10:15:30"), 111, domain.CategoryCargo)
	require.NotNil(t, closed)
	assert.True(t, closed.End.Equal(at(t, "10:01:00")))
	assert.True(t, tracker.Start().Equal(at(t, "10:15:00")))
	assert.True(t, tracker.End().Equal(at(t, "10:16:00")))
}

func TestWindowAcceptsLateEventWithinOpenWindow(t *testing.T) {
	tracker := NewWindowTracker(60 * time.Second)

	tracker.Observe(at(t, "10:00:40"), 111, domain.CategoryCargo)

	// Earlier than the first event but before the window end: accepted.
	closed := tracker.Observe(at(t, "10:00:05"), 222, domain.CategoryTanker)
	assert.Nil(t, closed)
	assert.Equal(t, 2, tracker.MemberCount())
}

func TestWindowSummaryCompleteness(t *testing.T) {
	tracker := NewWindowTracker(60 * time.Second)

	vessels := map[int64]domain.Category{
		111: domain.CategoryCargo,
		222: domain.CategoryTanker,
		333: domain.CategoryTanker,
		444: domain.CategoryUnknown,
	}
	for id, category := range vessels {
		tracker.Observe(at(t, "10:00:30"), id, category)
	}

	summary, err := tracker.ForceClose(at(t, "10:01:00"))
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Len(t, summary.Counts, len(domain.Categories))
	total := 0
	for _, c := range domain.Categories {
		count, ok := summary.Counts[c]
		require.True(t, ok, "category %s missing from summary", c)
		assert.GreaterOrEqual(t, count, 0)
		total += count
	}
	assert.Equal(t, len(vessels), total)
}

func TestForceCloseWithoutWindowIsNoOp(t *testing.T) {
	tracker := NewWindowTracker(60 * time.Second)

	summary, err := tracker.ForceClose(at(t, "10:00:00"))
	require.NoError(t, err)
	assert.Nil(t, summary)

	// Zero end instant is also fine while no window is open.
	summary, err = tracker.ForceClose(time.Time{})
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestForceCloseRequiresEndInstant(t *testing.T) {
	tracker := NewWindowTracker(60 * time.Second)
	tracker.Observe(at(t, "10:00:05"), 111, domain.CategoryCargo)

	_, err := tracker.ForceClose(time.Time{})
	assert.Error(t, err)
}

func TestForceCloseDiscardsState(t *testing.T) {
	tracker := NewWindowTracker(60 * time.Second)
	tracker.Observe(at(t, "10:00:05"), 111, domain.CategoryCargo)

	summary, err := tracker.ForceClose(at(t, "10:00:30"))
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.True(t, summary.End.Equal(at(t, "10:00:30")))

	assert.False(t, tracker.Active())
	assert.Equal(t, 0, tracker.MemberCount())
}
