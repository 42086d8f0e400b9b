package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP normalization service",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		application, err := app.New(configPath)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return application.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
