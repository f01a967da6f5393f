// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustinb303/ai-pr-watcher/internal/config"
	"github.com/rustinb303/ai-pr-watcher/internal/domain"
	"github.com/rustinb303/ai-pr-watcher/internal/gateway"
	"github.com/rustinb303/ai-pr-watcher/internal/history"
	"github.com/rustinb303/ai-pr-watcher/internal/usecase"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetches current counts and appends a snapshot to history",
	Long: `Fetches the current PR and commit counts for every tracked service from
GitHub search and appends one timestamped snapshot to the history file.
A service that fails to report gets its fields recorded as absent; the
run fails only when no service produced any data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runCollect(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.InheritedFlags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func runCollect(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	fetcher, err := gateway.NewGitHubGateway(cfg.GitHubToken, cfg.HTTPTimeout, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}

	collector := usecase.NewCollector(fetcher, cfg.Services, logger)
	snap, err := collector.Collect(ctx)
	if err != nil {
		if !snap.HasData() {
			// Skip this update cycle; the previous snapshot stays latest.
			return err
		}
		logger.Warn().Err(err).Msg("some services failed to report; their fields are recorded as N/A")
	}

	store := history.NewCSVStore(cfg.DataFile, cfg.Services)
	if err := store.Append(ctx, snap); err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	logger.Info().
		Time("timestamp", snap.Timestamp).
		Int("services", len(snap.Stats)).
		Str("data_file", cfg.DataFile).
		Msg("snapshot appended")

	if cfg.DatabaseURL != "" {
		mirrorToPostgres(ctx, cfg, snap, logger)
	}
	return nil
}

// mirrorToPostgres is best-effort: the CSV file is the record of truth,
// a lagging dashboard database never blocks the scheduled run.
func mirrorToPostgres(ctx context.Context, cfg *config.Config, snap domain.Snapshot, logger zerolog.Logger) {
	pg, err := history.NewPostgresStore(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to connect to Postgres; snapshot not mirrored")
		return
	}
	defer pg.Close()

	if err := pg.Append(ctx, snap); err != nil {
		logger.Warn().Err(err).Msg("failed to mirror snapshot to Postgres")
		return
	}
	logger.Info().Msg("snapshot mirrored to Postgres")
}
