package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// GenerateCmd creates the generate command.
func GenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Schedule a recommendation refresh",
		Long:  "Schedules regeneration of your recommendation batch on the server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runGenerate(cmd, outputJSON)
		},
	}

	return cmd
}

func runGenerate(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/recommendations/generate", nil)
	if err != nil {
		return err
	}

	if outputJSON {
		fmt.Println(string(resp.Data))
		return nil
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("Regeneration %s. Run 'paperdesk recommendations' shortly to see the new batch.\n", result.Status)
	return nil
}
