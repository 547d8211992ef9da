package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reposage/reposage/internal/app"
)

var askCmd = &cobra.Command{
	Use:   "ask <user-id> <question>",
	Short: "Ask a question about a user's GitHub content",
	Long: `ask embeds the question, retrieves the most relevant chunks from the
user's index, and generates a grounded answer with source citations.
When nothing relevant is indexed the model answers from general
knowledge and the citation list is empty.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	userID, err := parseUserID(args[0])
	if err != nil {
		return err
	}

	question := strings.TrimSpace(strings.Join(args[1:], " "))
	if question == "" {
		return fmt.Errorf("question is empty")
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

	resp, err := a.Answerer.Ask(ctx, user.ID, question)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Println(resp.Text)

	if len(resp.Citations) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for i, c := range resp.Citations {
			line := fmt.Sprintf("  [%d] %s", i+1, c.Title)
			if c.Repository != "" {
				line += fmt.Sprintf(" (%s)", c.Repository)
			}
			if c.URL != "" {
				line += " " + c.URL
			}
			fmt.Printf("%s (similarity %.2f)\n", line, c.Similarity)
		}
	}
	return nil
}
