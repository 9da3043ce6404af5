package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/palletlog/palletlog/internal/ledger"
	"github.com/palletlog/palletlog/internal/models"
	"github.com/spf13/cobra"
)

func newLedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and export the local xlsx ledger",
	}

	cmd.AddCommand(newLedgerShowCmd())
	cmd.AddCommand(newLedgerExportCmd())
	return cmd
}

func newLedgerShowCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print ledger rows from an xlsx or parquet file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				path = cfg.Ledger.XLSXPath
			}

			var rows []models.LogRow
			var err error
			switch strings.ToLower(filepath.Ext(path)) {
			case ".parquet":
				rows, err = ledger.ReadParquet(path)
			case ".xlsx":
				rows, err = ledger.ReadXLSX(path)
			default:
				return fmt.Errorf("unsupported ledger format: %s (supported: .xlsx, .parquet)", path)
			}
			if err != nil {
				return err
			}

			for _, row := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%s\n", row.Timestamp, strings.ReplaceAll(row.Reference, "\n", " "), row.Count, row.FileURL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "Ledger file (defaults to ledger.xlsx_path)")
	return cmd
}

func newLedgerExportCmd() *cobra.Command {
	var input string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the xlsx ledger to parquet",
		Example: `  palletlog ledger export --output pallets.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				input = cfg.Ledger.XLSXPath
			}

			rows, err := ledger.ReadXLSX(input)
			if err != nil {
				return err
			}
			if err := ledger.ExportParquet(output, rows); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(rows), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "xlsx ledger (defaults to ledger.xlsx_path)")
	cmd.Flags().StringVar(&output, "output", "palletlog.parquet", "Parquet output path")
	return cmd
}
