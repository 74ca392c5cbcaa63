package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paperchat-ai/paperchat/internal/service"
	"github.com/spf13/cobra"
)

func UploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload and index a PDF document",
		Long:  "Uploads a PDF to the server, indexes it for question answering and caches the resulting session locally.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

// uploadResult mirrors the server's upload response. The payload fields are
// only present in stateless deployments.
type uploadResult struct {
	FileID        string                  `json:"file_id"`
	Filename      string                  `json:"filename"`
	SizeBytes     int64                   `json:"size_bytes"`
	PageCount     int                     `json:"page_count"`
	ChunkCount    int                     `json:"chunk_count"`
	Message       string                  `json:"message"`
	Chunks        []string                `json:"chunks,omitempty"`
	Embeddings    [][]float32             `json:"embeddings,omitempty"`
	ChunkMetadata []service.ChunkMetadata `json:"chunk_metadata,omitempty"`
}

func runUpload(cmd *cobra.Command, path string, outputJSON bool) error {
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("only PDF files are supported")
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.UploadPDF("/upload/pdf", filepath.Base(path), file)
	if err != nil {
		return err
	}

	var result uploadResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse upload response: %w", err)
	}

	cached := &CachedSession{
		FileID:     result.FileID,
		Filename:   result.Filename,
		PageCount:  result.PageCount,
		ChunkCount: result.ChunkCount,
	}
	if len(result.Chunks) > 0 {
		cached.Stateless = true
		cached.Payload = &service.SessionPayload{
			DocumentID:    result.FileID,
			Filename:      result.Filename,
			PageCount:     result.PageCount,
			Chunks:        result.Chunks,
			Embeddings:    result.Embeddings,
			ChunkMetadata: result.ChunkMetadata,
		}
	}
	if err := SaveCachedSession(cached); err != nil {
		return err
	}

	if outputJSON {
		out := map[string]interface{}{
			"file_id":     result.FileID,
			"filename":    result.Filename,
			"page_count":  result.PageCount,
			"chunk_count": result.ChunkCount,
			"stateless":   cached.Stateless,
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Uploaded %s (%d pages, %d chunks)\n", result.Filename, result.PageCount, result.ChunkCount)
		fmt.Printf("File ID: %s\n", result.FileID)
		if cached.Stateless {
			fmt.Println("Session payload cached locally (stateless server)")
		}
	}

	return nil
}
