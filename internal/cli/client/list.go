package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func ListCmd() *cobra.Command {
	var cursor string
	var limit int
	var recent bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visible documents",
		Long:  "Lists documents in the categories your role can see.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			if recent {
				return runListRecent(cmd, limit, outputJSON)
			}
			return runList(cmd, cursor, limit, outputJSON)
		},
	}

	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")
	cmd.Flags().BoolVar(&recent, "recent", false, "Show most recently uploaded documents")

	return cmd
}

func runList(cmd *cobra.Command, cursor string, limit int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	query := url.Values{}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := "/documents"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	resp, err := api.Get(path)
	if err != nil {
		return err
	}

	var result struct {
		Items   []documentPayload `json:"items"`
		Cursor  string            `json:"cursor"`
		HasMore bool              `json:"has_more"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	if len(result.Items) == 0 {
		fmt.Println("No documents")
		return nil
	}

	printDocumentTable(result.Items)
	if result.HasMore && result.Cursor != "" {
		fmt.Printf("\nMore results available. Use --cursor %s\n", result.Cursor)
	}

	return nil
}

func runListRecent(cmd *cobra.Command, limit int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	path := "/documents/recent"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	resp, err := api.Get(path)
	if err != nil {
		return err
	}

	var items []documentPayload
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		out, _ := json.MarshalIndent(items, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	if len(items) == 0 {
		fmt.Println("No documents")
		return nil
	}

	printDocumentTable(items)
	return nil
}

func printDocumentTable(items []documentPayload) {
	for _, doc := range items {
		fmt.Printf("  %s  %-18s  %-10s  %s\n", doc.ID, doc.Category, doc.UploadDate, doc.Title)
	}
}
