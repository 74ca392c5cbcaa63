package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

func ClearCmd() *cobra.Command {
	var localOnly bool

	cmd := &cobra.Command{
		Use:   "clear <file_id>",
		Short: "Clear a document session",
		Long:  "Removes the session on the server and deletes the local cache entry, including conversation history.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cmd, args[0], localOnly)
		},
	}

	cmd.Flags().BoolVar(&localOnly, "local", false, "Only delete the local cache entry")

	return cmd
}

func runClear(cmd *cobra.Command, fileID string, localOnly bool) error {
	if !localOnly {
		api, err := NewAPIClientWithCmd(cmd)
		if err != nil {
			return err
		}
		if _, err := api.Delete("/sessions/" + fileID); err != nil {
			// A session the server no longer knows can still be cleared
			// locally.
			if apiErr, ok := err.(*APIError); !ok || apiErr.StatusCode != 404 {
				return err
			}
		}
	}

	if err := DeleteCachedSession(fileID); err != nil {
		return err
	}

	fmt.Printf("Session %s cleared\n", fileID)
	return nil
}
