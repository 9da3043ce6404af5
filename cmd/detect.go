package cmd

import (
	"fmt"

	"github.com/palletlog/palletlog/internal/detection"
	"github.com/spf13/cobra"
)

func newDetectCmd() *cobra.Command {
	var photoPath string

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Count pallets in a photo without saving anything",
		Example: `  palletlog detect --photo pallet.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := readPhotoFile(photoPath, *cfg.Photo.MaxEdge)
			if err != nil {
				return err
			}

			client := detection.NewClient(cfg.Detection.Endpoint, cfg.Detection.APIKey, cfg.Detection.ModelID)
			result, err := client.Infer(cmd.Context(), p.Data)
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Detected pallets: %d\n", len(result.Predictions))
			if verbose {
				for i, pred := range result.Predictions {
					fmt.Fprintf(cmd.OutOrStdout(), "  %d: %s %.2f at (%.0f, %.0f) %.0fx%.0f\n",
						i+1, pred.Class, pred.Confidence, pred.X, pred.Y, pred.Width, pred.Height)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&photoPath, "photo", "", "Path to the pallet photo (required)")
	_ = cmd.MarkFlagRequired("photo")
	return cmd
}
