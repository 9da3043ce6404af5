package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palletlog",
		Short: "Count pallets in a photo and log them to Drive and Sheets",
		Long: `Palletlog detects pallets in a captured photo, lets the user confirm the
count, then uploads the photo to a file store folder and appends a row
(timestamp, reference, count, file link) to a tracking spreadsheet.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			logLevel := slog.LevelInfo
			if verbose {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "palletlog.yaml", "Path to YAML config file")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSaveCmd())
	cmd.AddCommand(newDetectCmd())
	cmd.AddCommand(newOCRCmd())
	cmd.AddCommand(newLedgerCmd())

	return cmd
}
