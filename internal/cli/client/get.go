package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func GetCmd() *cobra.Command {
	var showContent bool
	var download bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runGet(cmd, args[0], showContent, download, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&showContent, "content", false, "Print the full document content")
	cmd.Flags().BoolVar(&download, "download", false, "Print a download link for the archived file")

	return cmd
}

func runGet(cmd *cobra.Command, id string, showContent, download, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if download {
		resp, err := api.Get("/documents/" + id + "/download")
		if err != nil {
			return err
		}
		var result struct {
			DownloadURL string `json:"download_url"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		fmt.Println(result.DownloadURL)
		return nil
	}

	resp, err := api.Get("/documents/" + id)
	if err != nil {
		return err
	}

	var doc documentPayload
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		out, _ := json.MarshalIndent(doc, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("ID: %s\n", doc.ID)
	fmt.Printf("Title: %s\n", doc.Title)
	fmt.Printf("Author: %s\n", doc.Author)
	fmt.Printf("Category: %s\n", doc.Category)
	fmt.Printf("Uploaded: %s by %s\n", doc.UploadDate, doc.Uploader)
	fmt.Printf("File: %s (%d bytes, %s)\n", doc.FileName, doc.FileSize, doc.FileType)
	if doc.Summary != "" {
		fmt.Printf("Summary: %s\n", doc.Summary)
	}
	if len(doc.Metadata.Keywords) > 0 {
		fmt.Printf("Keywords: %v\n", doc.Metadata.Keywords)
	}
	if len(doc.Metadata.Entities.People) > 0 {
		fmt.Printf("People: %v\n", doc.Metadata.Entities.People)
	}
	if len(doc.Metadata.Entities.Organizations) > 0 {
		fmt.Printf("Organizations: %v\n", doc.Metadata.Entities.Organizations)
	}
	if len(doc.Metadata.Entities.Amounts) > 0 {
		fmt.Printf("Amounts: %v\n", doc.Metadata.Entities.Amounts)
	}
	if len(doc.Metadata.Entities.Dates) > 0 {
		fmt.Printf("Dates: %v\n", doc.Metadata.Entities.Dates)
	}
	if showContent {
		fmt.Printf("\n%s\n", doc.Content)
	}

	return nil
}
