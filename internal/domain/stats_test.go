package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestServiceStat_MergeRate uses a table-driven approach to verify the
// merge rate derivation.
func TestServiceStat_MergeRate(t *testing.T) {
	testCases := []struct {
		name         string
		stat         ServiceStat
		expectedRate float64
		expectedOK   bool
	}{
		{
			name:         "both counts present",
			stat:         ServiceStat{Service: "Copilot", TotalPRs: Count(163620), MergedPRs: Count(100485)},
			expectedRate: 61.41,
			expectedOK:   true,
		},
		{
			name:         "rounds half up to two decimals",
			stat:         ServiceStat{Service: "Codex", TotalPRs: Count(3), MergedPRs: Count(2)},
			expectedRate: 66.67,
			expectedOK:   true,
		},
		{
			name:         "all merged",
			stat:         ServiceStat{Service: "Codex", TotalPRs: Count(250), MergedPRs: Count(250)},
			expectedRate: 100,
			expectedOK:   true,
		},
		{
			name:       "total absent",
			stat:       ServiceStat{Service: "Devin", MergedPRs: Count(10)},
			expectedOK: false,
		},
		{
			name:       "merged absent",
			stat:       ServiceStat{Service: "Devin", TotalPRs: Count(10)},
			expectedOK: false,
		},
		{
			name:       "commit-only service keeps commits but has no rate",
			stat:       ServiceStat{Service: "Devin", Commits: Count(78549)},
			expectedOK: false,
		},
		{
			name:       "zero total is undefined, not a division by zero",
			stat:       ServiceStat{Service: "Codex", TotalPRs: Count(0), MergedPRs: Count(0)},
			expectedOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rate, ok := tc.stat.MergeRate()
			assert.Equal(t, tc.expectedOK, ok)
			if tc.expectedOK {
				assert.InDelta(t, tc.expectedRate, rate, 1e-9)
			}
		})
	}
}

func TestSnapshot_HasData(t *testing.T) {
	now := time.Now().UTC()

	empty := Snapshot{Timestamp: now, Stats: []ServiceStat{
		{Service: "Copilot"},
		{Service: "Devin"},
	}}
	assert.False(t, empty.HasData())

	partial := Snapshot{Timestamp: now, Stats: []ServiceStat{
		{Service: "Copilot"},
		{Service: "Devin", Commits: Count(1)},
	}}
	assert.True(t, partial.HasData())

	assert.False(t, Snapshot{Timestamp: now}.HasData())
}
