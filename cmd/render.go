// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustinb303/ai-pr-watcher/internal/config"
	"github.com/rustinb303/ai-pr-watcher/internal/domain"
	"github.com/rustinb303/ai-pr-watcher/internal/history"
	"github.com/rustinb303/ai-pr-watcher/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Rewrites the README statistics and the trend-chart series",
	Long: `Loads the snapshot history, rewrites the README's statistics section
from the latest snapshot, and writes the downsampled trend series JSON
that the chart renderer and the GitHub Pages dashboard consume.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runRender(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	store := history.NewCSVStore(cfg.DataFile, cfg.Services)
	snapshots, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(snapshots) == 0 {
		return errors.New("no snapshots collected yet; run collect first")
	}
	latest := snapshots[len(snapshots)-1]

	if err := updateReadme(cfg, latest, logger); err != nil {
		return err
	}

	chart := render.BuildChart(snapshots, cfg.MaxChartPoints)
	if err := render.WriteChart(cfg.ChartFile, chart); err != nil {
		return err
	}
	logger.Info().
		Str("chart_file", cfg.ChartFile).
		Int("points", len(chart.Labels)).
		Int("series", len(chart.Series)).
		Msg("chart series written")

	// Keep the GitHub Pages copy in step when a docs dir exists.
	if info, err := os.Stat(cfg.DocsDir); err == nil && info.IsDir() {
		docsFile := filepath.Join(cfg.DocsDir, filepath.Base(cfg.ChartFile))
		if err := render.WriteChart(docsFile, chart); err != nil {
			return err
		}
		logger.Info().Str("chart_file", docsFile).Msg("chart series copied for dashboard")
	}

	return nil
}

func updateReadme(cfg *config.Config, latest domain.Snapshot, logger zerolog.Logger) error {
	readme, err := os.ReadFile(cfg.ReadmeFile)
	if os.IsNotExist(err) {
		logger.Warn().Str("readme", cfg.ReadmeFile).Msg("README not found, skipping update")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read README: %w", err)
	}

	section := render.Section(latest, "chart.png")
	updated := render.SpliceReadme(string(readme), section)
	if err := os.WriteFile(cfg.ReadmeFile, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("failed to write README: %w", err)
	}
	logger.Info().Str("readme", cfg.ReadmeFile).Msg("README statistics updated")
	return nil
}
