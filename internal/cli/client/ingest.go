package client

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// documentPayload mirrors the server's document response shape
type documentPayload struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Author            string `json:"author"`
	Category          string `json:"category"`
	SuggestedCategory string `json:"suggested_category"`
	UploadDate        string `json:"upload_date"`
	Uploader          string `json:"uploader"`
	FileName          string `json:"file_name"`
	FileSize          int64  `json:"file_size"`
	FileType          string `json:"file_type"`
	Summary           string `json:"summary"`
	Content           string `json:"content"`
	Metadata          struct {
		Keywords []string `json:"keywords"`
		Entities struct {
			People        []string `json:"people"`
			Organizations []string `json:"organizations"`
			Amounts       []string `json:"amounts"`
			Dates         []string `json:"dates"`
		} `json:"entities"`
	} `json:"metadata"`
	CreatedAt string `json:"created_at"`
}

func IngestCmd() *cobra.Command {
	var title, author, category, date string

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Upload a document for analysis",
		Long:  "Reads a text file, runs it through the intelligence pipeline on the server and stores the result.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIngest(cmd, args[0], title, author, category, date, outputJSON)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Override the extracted title")
	cmd.Flags().StringVar(&author, "author", "", "Override the extracted author")
	cmd.Flags().StringVar(&category, "category", "", "Override the classified category")
	cmd.Flags().StringVar(&date, "date", "", "Override the upload date (YYYY-MM-DD)")

	return cmd
}

func runIngest(cmd *cobra.Command, path, title, author, category, date string, outputJSON bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	fileName := filepath.Base(path)
	fileType := mime.TypeByExtension(filepath.Ext(path))
	if fileType == "" {
		fileType = "text/plain"
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"content":   string(data),
		"file_name": fileName,
		"file_size": int64(len(data)),
		"file_type": fileType,
	}
	if title != "" {
		body["title"] = title
	}
	if author != "" {
		body["author"] = author
	}
	if category != "" {
		body["category"] = category
	}
	if date != "" {
		body["date"] = date
	}

	resp, err := api.Post("/documents", body)
	if err != nil {
		return err
	}

	var result struct {
		Document     documentPayload `json:"document"`
		PersistError string          `json:"persist_error"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	doc := result.Document
	fmt.Printf("Ingested %s\n", doc.FileName)
	fmt.Printf("ID: %s\n", doc.ID)
	fmt.Printf("Title: %s\n", doc.Title)
	fmt.Printf("Author: %s\n", doc.Author)
	fmt.Printf("Category: %s", doc.Category)
	if doc.SuggestedCategory != "" && doc.SuggestedCategory != doc.Category {
		fmt.Printf(" (classifier suggested: %s)", doc.SuggestedCategory)
	}
	fmt.Println()
	if doc.Summary != "" {
		fmt.Printf("Summary: %s\n", doc.Summary)
	}
	if len(doc.Metadata.Keywords) > 0 {
		fmt.Printf("Keywords: %v\n", doc.Metadata.Keywords)
	}
	if result.PersistError != "" {
		fmt.Printf("\n⚠️  Document was analyzed but not saved: %s\n", result.PersistError)
		fmt.Println("Retry the ingest to save it.")
	}

	return nil
}
