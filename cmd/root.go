// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ai-pr-watcher",
	Short: "Tracks PR volume and merge rates for AI coding agents.",
	Long: `ai-pr-watcher periodically counts pull requests and commits created by
AI coding agents (Copilot, Codex, Devin, Jules) via GitHub search,
keeps an append-only snapshot history, and renders the comparison
table and trend series published in the README and on the dashboard.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadDotenv)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
}

// loadDotenv loads a local .env when present; a missing file is fine,
// plain environment variables still apply.
func loadDotenv() {
	_ = godotenv.Load()
}

// newLogger builds the CLI logger, honoring the persistent verbose flag.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose, _ := cmd.InheritedFlags().GetBool("verbose"); verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
