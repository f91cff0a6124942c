package eventstore

import "time"

// SnapshotStrategy decides, after each confirmed append, whether the
// event-sourced store should take a fresh snapshot.
type SnapshotStrategy interface {
	// ShouldSnapshot is consulted with the version just reached and the
	// number of events confirmed in that batch.
	ShouldSnapshot(version int64, pendingCount int) bool
}

// IntervalStrategy snapshots every N versions (version % N == 0).
type IntervalStrategy struct {
	N int64
}

// NewIntervalStrategy builds an IntervalStrategy; n <= 0 disables
// snapshotting entirely (ShouldSnapshot always false).
func NewIntervalStrategy(n int64) IntervalStrategy {
	return IntervalStrategy{N: n}
}

func (s IntervalStrategy) ShouldSnapshot(version int64, _ int) bool {
	if s.N <= 0 {
		return false
	}
	return version%s.N == 0
}

// HybridStrategy snapshots on whichever of three triggers fires first:
// an interval of versions, a wall-clock deadline since the last snapshot,
// or a large-batch append. It composes interval + time + batch-size
// triggers to capture both steady-state and bursty workloads.
type HybridStrategy struct {
	Interval     int64
	MaxAge       time.Duration
	MaxBatchSize int
	lastSnapshot time.Time
	now          func() time.Time
}

// NewHybridStrategy builds a HybridStrategy with the given triggers. A
// zero value for any field disables that particular trigger.
func NewHybridStrategy(interval int64, maxAge time.Duration, maxBatchSize int) *HybridStrategy {
	return &HybridStrategy{
		Interval:     interval,
		MaxAge:       maxAge,
		MaxBatchSize: maxBatchSize,
		lastSnapshot: time.Now(),
		now:          time.Now,
	}
}

func (h *HybridStrategy) ShouldSnapshot(version int64, pendingCount int) bool {
	now := h.now()

	trigger := false
	if h.Interval > 0 && version%h.Interval == 0 {
		trigger = true
	}
	if h.MaxAge > 0 && now.Sub(h.lastSnapshot) >= h.MaxAge {
		trigger = true
	}
	if h.MaxBatchSize > 0 && pendingCount >= h.MaxBatchSize {
		trigger = true
	}
	if trigger {
		h.lastSnapshot = now
	}
	return trigger
}

var (
	_ SnapshotStrategy = IntervalStrategy{}
	_ SnapshotStrategy = (*HybridStrategy)(nil)
)
