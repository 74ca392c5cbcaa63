package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List locally cached document sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runList(outputJSON)
		},
	}

	return cmd
}

func runList(outputJSON bool) error {
	sessions, err := ListCachedSessions()
	if err != nil {
		return err
	}

	if outputJSON {
		if sessions == nil {
			sessions = []*CachedSession{}
		}
		out := make([]map[string]interface{}, 0, len(sessions))
		for _, s := range sessions {
			out = append(out, map[string]interface{}{
				"file_id":     s.FileID,
				"filename":    s.Filename,
				"page_count":  s.PageCount,
				"chunk_count": s.ChunkCount,
				"stateless":   s.Stateless,
				"turns":       len(s.History),
			})
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(sessions) == 0 {
		fmt.Println("No cached sessions (run 'paperchat upload <file.pdf>' first)")
		return nil
	}

	for _, s := range sessions {
		fmt.Printf("%s  %s (%d pages, %d chunks, %d turns)\n", s.FileID, s.Filename, s.PageCount, s.ChunkCount, len(s.History))
	}

	return nil
}
