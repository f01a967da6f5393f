package render

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/montanaflynn/stats"

	"github.com/rustinb303/ai-pr-watcher/internal/domain"
)

// ChartData is the trend series (service x time x metric) handed to the
// external chart renderer.
type ChartData struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Series is one metric of one service over the charted points. Values
// are null where the metric was absent for that snapshot.
type Series struct {
	Service string     `json:"service"`
	Metric  string     `json:"metric"`
	Values  []*float64 `json:"values"`
	Summary Summary    `json:"summary"`
}

// Summary condenses a series for the dashboard's legend.
type Summary struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

const labelLayout = "01-02 15:04"

// metricExtractors, in output order per service.
var metricExtractors = []struct {
	name  string
	value func(domain.ServiceStat) *float64
}{
	{"total_prs", func(s domain.ServiceStat) *float64 { return intValue(s.TotalPRs) }},
	{"merged_prs", func(s domain.ServiceStat) *float64 { return intValue(s.MergedPRs) }},
	{"merge_rate", func(s domain.ServiceStat) *float64 {
		rate, ok := s.MergeRate()
		if !ok {
			return nil
		}
		return &rate
	}},
	{"commits", func(s domain.ServiceStat) *float64 { return intValue(s.Commits) }},
}

// Downsample returns at most max snapshots spread evenly across the
// full history, keeping the first and last points. The chart gets too
// busy beyond a handful of points.
func Downsample(history []domain.Snapshot, max int) []domain.Snapshot {
	if max <= 0 || len(history) <= max {
		return history
	}
	if max == 1 {
		return history[len(history)-1:]
	}
	out := make([]domain.Snapshot, max)
	step := float64(len(history)-1) / float64(max-1)
	for i := range out {
		out[i] = history[int(float64(i)*step)]
	}
	out[max-1] = history[len(history)-1]
	return out
}

// BuildChart downsamples history and assembles one series per observed
// service metric. The result depends only on its inputs.
func BuildChart(history []domain.Snapshot, maxPoints int) ChartData {
	points := Downsample(history, maxPoints)

	data := ChartData{Labels: make([]string, len(points))}
	for i, snap := range points {
		data.Labels[i] = snap.Timestamp.UTC().Format(labelLayout)
	}

	for _, service := range serviceOrder(points) {
		for _, extractor := range metricExtractors {
			values := make([]*float64, len(points))
			seen := false
			for i, snap := range points {
				stat, ok := findStat(snap, service)
				if !ok {
					continue
				}
				if v := extractor.value(stat); v != nil {
					values[i] = v
					seen = true
				}
			}
			if !seen {
				continue
			}
			data.Series = append(data.Series, Series{
				Service: service,
				Metric:  extractor.name,
				Values:  values,
				Summary: summarize(values),
			})
		}
	}
	return data
}

// WriteChart writes the chart data as indented JSON.
func WriteChart(path string, data ChartData) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chart data: %w", err)
	}
	if err := os.WriteFile(path, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write chart data: %w", err)
	}
	return nil
}

// serviceOrder lists services in first-seen order across the points so
// series ordering is stable.
func serviceOrder(points []domain.Snapshot) []string {
	seen := make(map[string]struct{})
	var order []string
	for _, snap := range points {
		for _, stat := range snap.Stats {
			if _, ok := seen[stat.Service]; ok {
				continue
			}
			seen[stat.Service] = struct{}{}
			order = append(order, stat.Service)
		}
	}
	return order
}

func findStat(snap domain.Snapshot, service string) (domain.ServiceStat, bool) {
	for _, stat := range snap.Stats {
		if stat.Service == service {
			return stat, true
		}
	}
	return domain.ServiceStat{}, false
}

func summarize(values []*float64) Summary {
	sample := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if v != nil {
			sample = append(sample, *v)
		}
	}
	if len(sample) == 0 {
		return Summary{}
	}

	min, _ := sample.Min()
	max, _ := sample.Max()
	mean, _ := sample.Mean()
	mean, _ = stats.Round(mean, 2)
	return Summary{Min: min, Mean: mean, Max: max}
}

func intValue(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
