// Package cmd implements the reposage command-line interface.
//
// Following the pattern used by kubectl, hugo, and other standard Go CLI
// tools, all application logic is contained here, leaving main.go as a
// minimal entry point.
package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reposage/reposage/internal/config"
	"github.com/reposage/reposage/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "reposage",
	Short: "Ask questions about your GitHub repositories and issues",
	Long: `reposage indexes your synced GitHub issues and repositories into a
vector store and answers questions about them, grounding every answer
in the retrieved content and citing its sources.

Configuration comes from ~/.reposage/config.yaml, REPOSAGE_* environment
variables, or DATABASE_URL. Model access requires GEMINI_API_KEY.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads configuration and installs the configured logger as
// the process default.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
	slog.SetDefault(logger)

	return cfg, logger, nil
}

// parseUserID parses a positional user id argument.
func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid user id %q: must be a positive integer", arg)
	}
	return id, nil
}
