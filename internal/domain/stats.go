// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"time"

	"github.com/montanaflynn/stats"
)

// ServiceStat holds the counts observed for a single tracked service
// during one collection run. Count fields are pointers because services
// expose either PR-based or commit-based metrics, never both; a nil
// field renders as "N/A".
type ServiceStat struct {
	Service   string `json:"service"`
	TotalPRs  *int   `json:"total_prs,omitempty"`
	MergedPRs *int   `json:"merged_prs,omitempty"`
	Commits   *int   `json:"commits,omitempty"`
}

// MergeRate returns merged/total as a percentage rounded to two decimal
// places. ok is false when either count is absent or the total is zero,
// in which case the rate is undefined.
func (s ServiceStat) MergeRate() (rate float64, ok bool) {
	if s.TotalPRs == nil || s.MergedPRs == nil || *s.TotalPRs == 0 {
		return 0, false
	}
	rate, err := stats.Round(float64(*s.MergedPRs)/float64(*s.TotalPRs)*100, 2)
	if err != nil {
		return 0, false
	}
	return rate, true
}

// Snapshot is one timestamped, ordered set of per-service statistics.
// Snapshots are appended to history and never mutated afterwards.
type Snapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	Stats     []ServiceStat `json:"stats"`
}

// HasData reports whether at least one service produced at least one
// count. A snapshot without any data is not worth recording.
func (s Snapshot) HasData() bool {
	for _, stat := range s.Stats {
		if stat.TotalPRs != nil || stat.MergedPRs != nil || stat.Commits != nil {
			return true
		}
	}
	return false
}

// Count returns a pointer to v, for building optional count fields.
func Count(v int) *int { return &v }
