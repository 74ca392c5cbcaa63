package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <file_id>",
		Short: "Show indexing status for an uploaded document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStatus(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runStatus(cmd *cobra.Command, fileID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/upload/pdf/" + fileID + "/status")
	if err != nil {
		return err
	}

	var result struct {
		FileID     string `json:"file_id"`
		Filename   string `json:"filename"`
		PageCount  int    `json:"page_count"`
		ChunkCount int    `json:"chunk_count"`
		Status     string `json:"status"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse status response: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("%s: %s (%d pages, %d chunks)\n", result.FileID, result.Status, result.PageCount, result.ChunkCount)
		fmt.Printf("Filename: %s\n", result.Filename)
	}

	return nil
}
