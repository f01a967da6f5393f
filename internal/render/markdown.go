// Package render turns snapshot history into the presentation
// artifacts: the README statistics table and the trend series the
// static dashboard charts from. Everything here is a pure function of
// its inputs.
package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rustinb303/ai-pr-watcher/internal/domain"
)

// StatsHeading marks the start of the generated README section.
const StatsHeading = "## Current Statistics"

var numberPrinter = message.NewPrinter(language.English)

// Table renders the statistics table for one snapshot. The column
// schema is fixed; absent counts and undefined merge rates render as
// N/A. Identical snapshots produce byte-identical output.
func Table(snap domain.Snapshot) string {
	var b strings.Builder
	b.WriteString("| Service | Total PRs | Merged PRs | Merge Rate | Total Commits |\n")
	b.WriteString("| ------- | --------- | ---------- | ---------- | ------------- |\n")
	for _, stat := range snap.Stats {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			stat.Service,
			formatCount(stat.TotalPRs),
			formatCount(stat.MergedPRs),
			formatRate(stat),
			formatCount(stat.Commits),
		)
	}
	return b.String()
}

// Section renders the full statistics section, chart reference
// included.
func Section(snap domain.Snapshot, chartRef string) string {
	var b strings.Builder
	b.WriteString(StatsHeading)
	b.WriteString("\n\n")
	if chartRef != "" {
		fmt.Fprintf(&b, "![PR Analytics](%s)\n\n", chartRef)
	}
	b.WriteString(Table(snap))
	return b.String()
}

// SpliceReadme replaces everything from the statistics heading down
// with section, or appends the section when the README has none yet.
func SpliceReadme(readme, section string) string {
	if idx := strings.Index(readme, StatsHeading); idx >= 0 {
		base := strings.TrimRight(readme[:idx], "\n")
		if base == "" {
			return section
		}
		return base + "\n\n" + section
	}
	if strings.TrimSpace(readme) == "" {
		return section
	}
	return strings.TrimRight(readme, "\n") + "\n\n" + section
}

func formatCount(v *int) string {
	if v == nil {
		return "N/A"
	}
	return numberPrinter.Sprintf("%d", *v)
}

func formatRate(stat domain.ServiceStat) string {
	rate, ok := stat.MergeRate()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", rate)
}
