package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/cli"
	"github.com/paperdesk/paperdesk/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "paperdeskd",
		Short: "Paperdesk daemon",
		Long:  "Paperdesk daemon for running the recommendation API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
