package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/app"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.pptx>",
	Short: "Normalize one local presentation",
	Long: `Convert runs the same conversion pipeline as the HTTP service against a
local file and writes the normalized presentation to --output, or next to
the input as <name>.normalized.pptx.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		output, _ := cmd.Flags().GetString("output")
		mode, _ := cmd.Flags().GetString("mode")

		result, written, err := app.ConvertFile(cmd.Context(), configPath, args[0], output, mode)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "%s (job %s, %s, %d bytes, %d slides, %s)\n",
			written, result.JobID, result.Mode, len(result.Data), result.Slides, result.Elapsed.Round(time.Millisecond))
		return nil
	},
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "output file")
	convertCmd.Flags().String("mode", "", "normalization mode: single or two_pass (default from config)")

	rootCmd.AddCommand(convertCmd)
}
