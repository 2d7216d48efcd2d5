package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/cli"
	"github.com/paperdesk/paperdesk/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "paperdesk",
		Short: "Paperdesk CLI - Paper recommendations for your library",
		Long: `Paperdesk CLI provides commands to browse and steer your paper recommendations.

Environment variables:
  PAPERDESK_USER_ID   User identifier (required)
  PAPERDESK_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("user", "", "User identifier (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.RecommendationsCmd())
	rootCmd.AddCommand(client.GenerateCmd())
	rootCmd.AddCommand(client.FeedbackCmd())
	rootCmd.AddCommand(client.RelatedCmd())
	rootCmd.AddCommand(client.BehaviorCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
