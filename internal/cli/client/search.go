package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func SearchCmd() *cobra.Command {
	var mode, category string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search documents",
		Long:  "Searches visible documents. Semantic mode ranks by embedding similarity, keyword mode by term frequency.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd, strings.Join(args, " "), mode, category, limit, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "semantic", "Search mode: semantic or keyword")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Restrict results to a category")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (semantic mode)")

	return cmd
}

func runSearch(cmd *cobra.Command, query, mode, category string, limit int, outputJSON bool) error {
	if mode != "semantic" && mode != "keyword" {
		return fmt.Errorf("invalid mode %q (expected semantic or keyword)", mode)
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	body := map[string]interface{}{"query": query}
	if category != "" {
		body["category"] = category
	}
	if limit > 0 && mode == "semantic" {
		body["limit"] = limit
	}

	resp, err := api.Post("/search/"+mode, body)
	if err != nil {
		return err
	}

	var result struct {
		Results []struct {
			Document documentPayload `json:"document"`
			Score    float32         `json:"score"`
			Snippet  string          `json:"snippet"`
		} `json:"results"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	if result.Count == 0 {
		fmt.Println("No results")
		return nil
	}

	for i, r := range result.Results {
		fmt.Printf("%d. %s (%s, score %.3f)\n", i+1, r.Document.Title, r.Document.Category, r.Score)
		fmt.Printf("   ID: %s\n", r.Document.ID)
		if r.Snippet != "" {
			fmt.Printf("   %s\n", r.Snippet)
		}
	}

	return nil
}
