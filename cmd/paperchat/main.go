package main

import (
	"fmt"
	"os"

	"github.com/paperchat-ai/paperchat/internal/cli"
	"github.com/paperchat-ai/paperchat/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "paperchat",
		Short: "Paperchat CLI - Chat with your PDF documents",
		Long: `Paperchat CLI uploads PDF documents and answers questions about them.

Environment variables:
  PAPERCHAT_API_KEY   Backend API key forwarded to the server (optional)
  PAPERCHAT_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.UploadCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.StatusCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.ClearCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
