package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	mode      string
	matchID   string
	sessionID string
	scoreA    int
	scoreB    int
	playerIDs string
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(movementsCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(metricsCmd)

	leaderboardCmd.Flags().StringVar(&mode, "mode", "SINGLES", "Rating mode (SINGLES or DOUBLES)")

	applyCmd.Flags().StringVar(&matchID, "match-id", "", "The match to apply")
	applyCmd.MarkFlagRequired("match-id")

	editCmd.Flags().StringVar(&matchID, "match-id", "", "The match to edit")
	editCmd.Flags().IntVar(&scoreA, "score-a", 0, "New score for side A")
	editCmd.Flags().IntVar(&scoreB, "score-b", 0, "New score for side B")
	editCmd.MarkFlagRequired("match-id")

	summaryCmd.Flags().StringVar(&sessionID, "session-id", "", "The session to summarise")
	summaryCmd.MarkFlagRequired("session-id")

	movementsCmd.Flags().StringVar(&playerIDs, "player-ids", "", "Comma-separated player ids")
	movementsCmd.Flags().StringVar(&mode, "mode", "SINGLES", "Rating mode (SINGLES or DOUBLES)")
	movementsCmd.MarkFlagRequired("player-ids")

	unlockCmd.Flags().StringVar(&sessionID, "session-id", "", "The session to unlock")
	unlockCmd.MarkFlagRequired("session-id")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List the players in the club store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/members")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the current leaderboard for a mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard?mode=" + url.QueryEscape(mode))
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the ratings for a freshly scored match",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/apply-match?match_id=" + url.QueryEscape(matchID))
	},
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a historical match score and recompute ratings",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{
			"match_id": matchID,
			"score_a":  scoreA,
			"score_b":  scoreB,
		}
		return performPostRequest("/edit-match", payload)
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the rating summary for a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/session-summary?session_id=" + url.QueryEscape(sessionID))
	},
}

var movementsCmd = &cobra.Command{
	Use:   "movements",
	Short: "Show rank movements since the previous session",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := fmt.Sprintf("/rank-movements?player_ids=%s&mode=%s", url.QueryEscape(playerIDs), url.QueryEscape(mode))
		return performGetRequest(endpoint)
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Force-unlock a session stuck in a recalculation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/unlock-session?session_id="+url.QueryEscape(sessionID), nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, payload any) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	resp, err := http.Post(url, "application/json", body)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
