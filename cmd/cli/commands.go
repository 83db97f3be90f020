package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(directoryCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(tournamentCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/health", nil)
	},
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List the claimed members of the club",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/members", nil)
	},
}

var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "List the club directory, claimed and unclaimed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/directory", nil)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the global leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/leaderboard", nil)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show the skill category leaderboards",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/leaderboard/categories", nil)
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List match scores awaiting approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/matches/pending", nil)
	},
}

var tournamentCmd = &cobra.Command{
	Use:   "tournament",
	Short: "Show the current tournament state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/tournament", nil)
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Show the current tournament standings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/tournament/standings", nil)
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "List the upcoming club sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/schedule", nil)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit [opponent] [your-score] [their-score]",
	Short: "Submit a match score against an opponent",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := fmt.Sprintf(`{"player_b": %q, "score_a": %s, "score_b": %s}`, args[0], args[1], args[2])
		return performRequest("POST", "/matches", []byte(body))
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/metrics", nil)
	},
}

func performRequest(method, endpoint string, body []byte) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if principal != "" {
		req.Header.Set("X-Club-Principal", principal)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
