package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// FeedbackCmd creates the feedback command.
func FeedbackCmd() *cobra.Command {
	var feedback string

	cmd := &cobra.Command{
		Use:   "feedback <recommendation-id>",
		Short: "Record feedback on a recommendation",
		Long:  "Records feedback (for example LIKE or DISMISS) on one of your recommendations.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedback(cmd, args[0], feedback)
		},
	}

	cmd.Flags().StringVarP(&feedback, "value", "v", "", "Feedback value (required)")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func runFeedback(cmd *cobra.Command, recommendationID, feedback string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	body := map[string]string{"feedback": feedback}
	if _, err := api.Put("/recommendations/"+recommendationID+"/feedback", body); err != nil {
		return err
	}

	fmt.Println("Feedback recorded.")
	return nil
}
