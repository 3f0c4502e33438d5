// Package stats keeps in-memory counters for completed generation sessions.
package stats

import "sync/atomic"

// Collector accumulates session counters. The zero value is ready to use
// and safe for concurrent use. Counts reset when the process restarts.
type Collector struct {
	sessions atomic.Int64
	items    atomic.Int64
}

// RecordSession counts one validated document and the backlog items it
// carried.
func (c *Collector) RecordSession(itemCount int) {
	c.sessions.Add(1)
	c.items.Add(int64(itemCount))
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	TotalSessions      int64   `json:"total_sessions"`
	ItemsGenerated     int64   `json:"items_generated"`
	AvgItemsPerSession float64 `json:"avg_items_per_session"`
}

// Snapshot returns the current totals. The average is zero until the first
// session completes.
func (c *Collector) Snapshot() Snapshot {
	sessions := c.sessions.Load()
	items := c.items.Load()
	snap := Snapshot{TotalSessions: sessions, ItemsGenerated: items}
	if sessions > 0 {
		snap.AvgItemsPerSession = float64(items) / float64(sessions)
	}
	return snap
}
