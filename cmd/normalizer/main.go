// Package main is the entry point for the presentation normalizer.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "normalizer",
	Short: "Normalize presentations by re-saving them through LibreOffice",
	Long: `normalizer re-exports uploaded presentations through a headless LibreOffice
so downstream tools receive a package written by a known producer.

Run "normalizer serve" for the HTTP service or "normalizer convert" for a
single local file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: internal/normalizer/config/$ENV.yaml)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
