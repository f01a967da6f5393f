package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustinb303/ai-pr-watcher/internal/domain"
)

func sampleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Stats: []domain.ServiceStat{
			{Service: "Copilot", TotalPRs: domain.Count(163620), MergedPRs: domain.Count(100485)},
			{Service: "Codex", TotalPRs: domain.Count(50000), MergedPRs: domain.Count(40000)},
			{Service: "Devin", Commits: domain.Count(78549)},
			{Service: "Jules", Commits: domain.Count(1200)},
		},
	}
}

func TestTable(t *testing.T) {
	expected := strings.Join([]string{
		"| Service | Total PRs | Merged PRs | Merge Rate | Total Commits |",
		"| ------- | --------- | ---------- | ---------- | ------------- |",
		"| Copilot | 163,620 | 100,485 | 61.41% | N/A |",
		"| Codex | 50,000 | 40,000 | 80.00% | N/A |",
		"| Devin | N/A | N/A | N/A | 78,549 |",
		"| Jules | N/A | N/A | N/A | 1,200 |",
		"",
	}, "\n")

	assert.Equal(t, expected, Table(sampleSnapshot()))
}

// TestTable_Deterministic verifies rendering is a pure function:
// identical inputs produce byte-identical output.
func TestTable_Deterministic(t *testing.T) {
	first := Table(sampleSnapshot())
	second := Table(sampleSnapshot())
	assert.Equal(t, first, second)
}

func TestSection_IncludesChartReference(t *testing.T) {
	section := Section(sampleSnapshot(), "chart.png")
	assert.True(t, strings.HasPrefix(section, StatsHeading+"\n\n"))
	assert.Contains(t, section, "![PR Analytics](chart.png)")
	assert.Contains(t, section, "| Copilot | 163,620 |")
}

func TestSpliceReadme(t *testing.T) {
	section := Section(sampleSnapshot(), "chart.png")

	t.Run("replaces existing section", func(t *testing.T) {
		readme := "# ai-pr-watcher\n\nIntro text.\n\n## Current Statistics\n\nstale table\n"
		out := SpliceReadme(readme, section)
		assert.Equal(t, "# ai-pr-watcher\n\nIntro text.\n\n"+section, out)
		assert.NotContains(t, out, "stale table")
	})

	t.Run("appends when section is missing", func(t *testing.T) {
		readme := "# ai-pr-watcher\n\nIntro text.\n"
		out := SpliceReadme(readme, section)
		assert.Equal(t, "# ai-pr-watcher\n\nIntro text.\n\n"+section, out)
	})

	t.Run("idempotent", func(t *testing.T) {
		readme := "# ai-pr-watcher\n\nIntro text.\n"
		once := SpliceReadme(readme, section)
		twice := SpliceReadme(once, section)
		assert.Equal(t, once, twice)
	})

	t.Run("empty readme gets just the section", func(t *testing.T) {
		assert.Equal(t, section, SpliceReadme("", section))
	})
}

func TestTable_PartialSnapshot(t *testing.T) {
	snap := domain.Snapshot{
		Timestamp: time.Now().UTC(),
		Stats: []domain.ServiceStat{
			{Service: "Copilot", TotalPRs: domain.Count(100)}, // merged count absent
		},
	}
	table := Table(snap)
	require.Contains(t, table, "| Copilot | 100 | N/A | N/A | N/A |")
}
