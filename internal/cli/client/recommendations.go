package client

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// RecommendationItem represents a single recommendation in API responses.
type RecommendationItem struct {
	ID              string  `json:"id"`
	DocumentID      string  `json:"document_id,omitempty"`
	ExternalPaperID string  `json:"external_paper_id,omitempty"`
	Title           string  `json:"title"`
	Authors         string  `json:"authors,omitempty"`
	Source          string  `json:"source"`
	URL             string  `json:"url,omitempty"`
	Reason          string  `json:"reason"`
	Score           float64 `json:"score"`
	Feedback        string  `json:"feedback,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// RecommendationsCmd creates the recommendations list command.
func RecommendationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommendations",
		Short: "List your current recommendations",
		Long:  "Lists the current recommendation batch, best match first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runRecommendations(cmd, outputJSON)
		},
	}

	return cmd
}

func runRecommendations(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/recommendations")
	if err != nil {
		return err
	}

	var items []RecommendationItem
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		return fmt.Errorf("failed to parse recommendations: %w", err)
	}

	if outputJSON {
		encoded, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Println(string(encoded))
		return nil
	}

	if len(items) == 0 {
		fmt.Println("No recommendations yet. Run 'paperdesk generate' to build a batch.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCORE\tSOURCE\tTITLE\tREASON")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\t%s\n", item.ID, item.Score, item.Source, truncate(item.Title, 48), item.Reason)
	}
	return w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
