package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// BehaviorCmd creates the behavior command.
func BehaviorCmd() *cobra.Command {
	var documentID string

	cmd := &cobra.Command{
		Use:   "behavior <type>",
		Short: "Record a behavior event",
		Long:  "Records a behavior event (VIEW, ANALYZE, UPLOAD, SEARCH or SHARE), optionally tied to a document.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBehavior(cmd, args[0], documentID)
		},
	}

	cmd.Flags().StringVarP(&documentID, "document", "d", "", "Document the event relates to")

	return cmd
}

func runBehavior(cmd *cobra.Command, behaviorType, documentID string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	body := map[string]string{"type": behaviorType}
	if documentID != "" {
		body["document_id"] = documentID
	}

	resp, err := api.Post("/behaviors", body)
	if err != nil {
		return err
	}

	var event struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &event); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("Recorded %s event (id: %s)\n", behaviorType, event.ID)
	return nil
}
