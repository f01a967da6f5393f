package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data.csv", cfg.DataFile)
	assert.Equal(t, "README.md", cfg.ReadmeFile)
	assert.Equal(t, "chart-data.json", cfg.ChartFile)
	assert.Equal(t, 8, cfg.MaxChartPoints)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, DefaultServices(), cfg.Services)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATA_FILE", "history/data.csv")
	t.Setenv("MAX_CHART_POINTS", "12")
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "history/data.csv", cfg.DataFile)
	assert.Equal(t, 12, cfg.MaxChartPoints)
	assert.Equal(t, "ghp_test", cfg.GitHubToken)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_file: custom.csv
max_chart_points: 4
services:
  - name: Copilot
    metric: pulls
    query: "is:pr head:copilot/"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "custom.csv", cfg.DataFile)
	assert.Equal(t, 4, cfg.MaxChartPoints)
	require.Len(t, cfg.Services, 1)
	assert.Equal(t, "Copilot", cfg.Services[0].Name)
	assert.Equal(t, MetricPulls, cfg.Services[0].Metric)
}

func TestLoad_RejectsUnknownMetric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
services:
  - name: Copilot
    metric: issues
    query: "is:pr head:copilot/"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown metric kind")
}

func TestService_MergedQuery(t *testing.T) {
	svc := Service{Name: "Codex", Metric: MetricPulls, Query: "is:pr head:codex/"}
	assert.Equal(t, "is:pr head:codex/ is:merged", svc.MergedQuery())
}
