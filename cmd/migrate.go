package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reposage/reposage/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `migrate applies all unapplied schema migrations, which are embedded in
the binary. The other commands also migrate on startup; run this to set
up or upgrade the schema without touching the index.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	fmt.Println("Migrations up to date")
	return nil
}
