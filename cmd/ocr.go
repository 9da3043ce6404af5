package cmd

import (
	"fmt"

	"github.com/palletlog/palletlog/internal/ocr"
	"github.com/palletlog/palletlog/internal/photo"
	"github.com/spf13/cobra"
)

func newOCRCmd() *cobra.Command {
	var photoPath string
	var provider string
	var model string

	cmd := &cobra.Command{
		Use:   "ocr",
		Short: "Read the document reference from a photo",
		Long: `Runs OCR on a document photo and prints the lines that start with the
configured reference prefix (PT by default).`,
		Example: `  # Local tesseract
  palletlog ocr --photo doc.jpg --provider tesseract

  # Gemini vision
  palletlog ocr --photo doc.jpg --provider gemini`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if provider == "" {
				provider = cfg.OCR.Provider
			}
			if model == "" {
				model = cfg.OCR.Model
			}

			svc, err := ocr.NewService(provider, model, cfg.OCR.Prefix)
			if err != nil {
				return err
			}
			if svc == nil {
				return fmt.Errorf("OCR is disabled; pass --provider (tesseract, gemini, ollama or openai)")
			}

			p, err := readPhotoFile(photoPath, *cfg.Photo.MaxEdge)
			if err != nil {
				return err
			}

			ref, err := svc.Reference(cmd.Context(), p.Data, photo.MIMEType)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ref)
			return nil
		},
	}

	cmd.Flags().StringVar(&photoPath, "photo", "", "Path to the document photo (required)")
	cmd.Flags().StringVar(&provider, "provider", "", "OCR provider (tesseract, gemini, ollama, openai)")
	cmd.Flags().StringVar(&model, "model", "", "Model name or tesseract language")
	_ = cmd.MarkFlagRequired("photo")
	return cmd
}
