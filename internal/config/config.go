// Package config loads the application configuration from an optional
// YAML file with environment variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// MetricKind selects which GitHub search endpoint a service is counted with.
type MetricKind string

const (
	// MetricPulls counts pull requests via issue search; both the total
	// and the merged variant of the query are fetched.
	MetricPulls MetricKind = "pulls"
	// MetricCommits counts commits via commit search.
	MetricCommits MetricKind = "commits"
)

// Service describes one tracked coding agent and its search query.
type Service struct {
	Name   string     `yaml:"name"`
	Metric MetricKind `yaml:"metric"`
	Query  string     `yaml:"query"`
}

// MergedQuery narrows the service's PR query to merged pull requests.
func (s Service) MergedQuery() string {
	return s.Query + " is:merged"
}

// Config holds all runtime settings.
type Config struct {
	DataFile       string        `yaml:"data_file" env:"DATA_FILE" env-default:"data.csv"`
	ReadmeFile     string        `yaml:"readme_file" env:"README_FILE" env-default:"README.md"`
	ChartFile      string        `yaml:"chart_file" env:"CHART_FILE" env-default:"chart-data.json"`
	DocsDir        string        `yaml:"docs_dir" env:"DOCS_DIR" env-default:"docs"`
	MaxChartPoints int           `yaml:"max_chart_points" env:"MAX_CHART_POINTS" env-default:"8"`
	HTTPTimeout    time.Duration `yaml:"http_timeout" env:"HTTP_TIMEOUT" env-default:"30s"`
	GitHubToken    string        `env:"GITHUB_TOKEN"`
	DatabaseURL    string        `yaml:"database_url" env:"DATABASE_URL"`
	Services       []Service     `yaml:"services"`
}

// Load reads the configuration from path (when non-empty) and the
// environment. An empty service list falls back to the default tracked
// agents.
func Load(path string) (*Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if len(cfg.Services) == 0 {
		cfg.Services = DefaultServices()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MaxChartPoints < 1 {
		return fmt.Errorf("max_chart_points must be positive, got %d", c.MaxChartPoints)
	}
	for _, svc := range c.Services {
		if svc.Name == "" {
			return fmt.Errorf("service with query %q has no name", svc.Query)
		}
		if svc.Query == "" {
			return fmt.Errorf("service %s has no query", svc.Name)
		}
		switch svc.Metric {
		case MetricPulls, MetricCommits:
		default:
			return fmt.Errorf("service %s: unknown metric kind %q", svc.Name, svc.Metric)
		}
	}
	return nil
}

// DefaultServices returns the tracked agents and the exact search
// queries the published statistics are built from.
func DefaultServices() []Service {
	return []Service{
		{Name: "Copilot", Metric: MetricPulls, Query: "is:pr head:copilot/"},
		{Name: "Codex", Metric: MetricPulls, Query: "is:pr head:codex/"},
		{Name: "Devin", Metric: MetricCommits, Query: `committer:"devin-ai-integration[bot]"`},
		{Name: "Jules", Metric: MetricCommits, Query: `committer:"google-labs-jules[bot]"`},
	}
}
