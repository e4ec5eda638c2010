package main

import (
	"github.com/spf13/cobra"

	"accountflow/internal/app"
	"accountflow/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server. Usage:

	accountflow serve --config config/config.yaml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		return app.Run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
