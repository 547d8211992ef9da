package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reposage/reposage/internal/app"
)

var syncCmd = &cobra.Command{
	Use:   "sync <user-id>",
	Short: "Rebuild a user's embedding index from their synced GitHub content",
	Long: `sync re-chunks and re-embeds all of the user's issues and repositories,
then atomically replaces their embedding index with the new generation.
Run it after the user's GitHub content changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	userID, err := parseUserID(args[0])
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing application", "error", err)
		}
	}()

	user, err := a.Sources.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	report, err := a.Syncer.Sync(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("syncing user %d: %w", user.ID, err)
	}

	fmt.Printf("Synced %s: %d issue chunks, %d repositories\n",
		user.Email, report.ChunksSynced, report.ReposSynced)
	return nil
}
