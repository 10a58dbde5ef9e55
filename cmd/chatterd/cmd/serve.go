package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"chatterd/internal/config"
	"chatterd/internal/logging"
	"chatterd/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	Run: func(cmd *cobra.Command, args []string) {
		logging.New()
		cfg := config.New()

		s, err := server.New(cfg)
		if err != nil {
			slog.Error("Failed to initialize server", "error", err)
			os.Exit(1)
		}

		s.RegisterRoutes()
		s.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
