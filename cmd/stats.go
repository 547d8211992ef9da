package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reposage/reposage/internal/database"
	"github.com/reposage/reposage/internal/knowledge"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show embedding index statistics",
	Long: `stats prints the total number of embedding rows and the per-source-type
breakdown across all users. It needs only database access, no model
credentials.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	store := knowledge.NewStore(pool, logger)
	stats, err := store.StatsAll(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	fmt.Printf("Total embeddings: %d\n", stats.Total)
	for sourceType, count := range stats.BySourceType {
		fmt.Printf("  %s: %d\n", sourceType, count)
	}
	return nil
}
