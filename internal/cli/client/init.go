package client

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// InitCmd creates the init command.
func InitCmd() *cobra.Command {
	var userID string
	var apiURL string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Configure the paperdesk client",
		Long:  "Stores your user id and the API base URL in the global config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(userID, apiURL)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User identifier (UUID)")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "API base URL (default: http://localhost:8080)")

	return cmd
}

func runInit(userID, apiURL string) error {
	_ = godotenv.Load()
	if userID == "" {
		userID = os.Getenv(envUserID)
	}
	if userID == "" {
		fmt.Print("Enter user id: ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read user id: %w", err)
		}
		userID = strings.TrimSpace(input)
		if userID == "" {
			return fmt.Errorf("user id is required")
		}
	}

	if !IsValidUserID(userID) {
		return fmt.Errorf("invalid user id %q (expected a UUID)", userID)
	}

	if apiURL == "" {
		apiURL = os.Getenv(envAPIURL)
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	if err := SaveGlobalConfig(&GlobalConfig{UserID: userID, APIURL: apiURL}); err != nil {
		return err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}
