package aggregation

import (
	"errors"
	"time"

	"vesselwatch/internal/core/domain"
)

// WindowTracker holds at most one open tumbling window and the set of
// distinct vessels seen per category inside it. Closure is event-driven:
// a window closes when a position report at or past its end arrives, or on
// an explicit forced close. There is no timer and no out-of-order
// buffering. Not safe for concurrent use.
type WindowTracker struct {
	duration   time.Duration
	start      time.Time
	end        time.Time
	membership map[domain.Category]map[int64]struct{}
	active     bool
}

func NewWindowTracker(duration time.Duration) *WindowTracker {
	return &WindowTracker{duration: duration}
}

// Observe records a vessel sighting at event time t. When t falls at or
// past the open window's end, that window is closed and returned, and a
// fresh window seeded by t is opened before the sighting is recorded. An
// event at exactly the end instant belongs to the new window. Re-adding a
// vessel already present in its category is a no-op.
func (w *WindowTracker) Observe(t time.Time, vesselID int64, category domain.Category) *domain.WindowSummary {
	var closed *domain.WindowSummary

	if !w.active {
		w.open(t)
	} else if !t.Before(w.end) {
		summary := w.close(w.end)
		closed = &summary
		w.open(t)
	}

	set, ok := w.membership[category]
	if !ok {
		set = make(map[int64]struct{})
		w.membership[category] = set
	}
	set[vesselID] = struct{}{}

	return closed
}

// ForceClose closes the open window using the caller-supplied end instant,
// ordinarily wall-clock now. With no window open it is a no-op. A zero end
// instant while a window is open is caller error.
func (w *WindowTracker) ForceClose(end time.Time) (*domain.WindowSummary, error) {
	if !w.active {
		return nil, nil
	}
	if end.IsZero() {
		return nil, errors.New("force close requires an end instant")
	}
	summary := w.close(end)
	return &summary, nil
}

// Active reports whether a window is currently open.
func (w *WindowTracker) Active() bool {
	return w.active
}

// Start returns the open window's start; zero when no window is open.
func (w *WindowTracker) Start() time.Time {
	return w.start
}

// End returns the open window's end; zero when no window is open.
func (w *WindowTracker) End() time.Time {
	return w.end
}

// MemberCount sums the distinct vessels across all categories in the open
// window.
func (w *WindowTracker) MemberCount() int {
	total := 0
	for _, set := range w.membership {
		total += len(set)
	}
	return total
}

// open starts a window at t aligned down to the whole minute.
func (w *WindowTracker) open(t time.Time) {
	w.start = t.Truncate(time.Minute)
	w.end = w.start.Add(w.duration)
	w.membership = make(map[domain.Category]map[int64]struct{})
	w.active = true
}

func (w *WindowTracker) close(end time.Time) domain.WindowSummary {
	summary := domain.NewWindowSummary(w.start, end, w.membership)
	w.active = false
	w.start = time.Time{}
	w.end = time.Time{}
	w.membership = nil
	return summary
}
