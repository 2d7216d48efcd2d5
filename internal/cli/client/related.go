package client

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// RelatedItem represents a related document in API responses.
type RelatedItem struct {
	DocumentID string  `json:"document_id"`
	Name       string  `json:"name"`
	OwnerID    string  `json:"owner_id"`
	Score      float64 `json:"score"`
}

// RelatedCmd creates the related command.
func RelatedCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "related",
		Short: "List shared documents similar to yours",
		Long:  "Lists other users' shareable documents ranked by topic overlap with your uploads.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runRelated(cmd, limit, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")

	return cmd
}

func runRelated(cmd *cobra.Command, limit int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(fmt.Sprintf("/documents/related?limit=%d", limit))
	if err != nil {
		return err
	}

	var items []RelatedItem
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		return fmt.Errorf("failed to parse related documents: %w", err)
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
		fmt.Println("No related documents found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DOCUMENT\tSCORE\tNAME")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%.2f\t%s\n", item.DocumentID, item.Score, truncate(item.Name, 48))
	}
	return w.Flush()
}
