package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatterd",
	Short: "chatterd chat server",
	Long: `chatterd is a session-authenticated real-time chat server.

Available commands:
  serve    Start the HTTP and websocket server

Use "chatterd [command] --help" for more information about a specific command.`,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
