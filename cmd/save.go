package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/palletlog/palletlog/internal/photo"
	"github.com/palletlog/palletlog/internal/workflow"
	"github.com/spf13/cobra"
)

func newSaveCmd() *cobra.Command {
	var reference string
	var photoPath string
	var count string
	var confirm bool

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Detect pallets in a photo and save it with a log row",
		Long: `Runs the whole capture, detect and persist sequence for one photo.

Detection suggests a count; --count overrides it. Nothing is uploaded or
logged unless --confirm is given, so a run without it is a preview.`,
		Example: `  # Preview the detected count
  palletlog save --photo pallet.jpg --reference PT123456

  # Save with the detected count
  palletlog save --photo pallet.jpg --reference PT123456 --confirm

  # Save with a manual count
  palletlog save --photo pallet.jpg --count 5 --confirm`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if confirm {
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			p, err := readPhotoFile(photoPath, *cfg.Photo.MaxEdge)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if strings.TrimSpace(reference) == "" {
				ocrService, err := newOCRService(cfg)
				if err != nil {
					return err
				}
				if ocrService != nil {
					ref, err := ocrService.Reference(ctx, p.Data, photo.MIMEType)
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not read the document reference: %v\n", err)
					} else {
						reference = ref
					}
				}
			}

			o := newOrchestrator(cfg)
			suggested, err := o.Suggest(ctx, p.Data)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s (%v)\n", workflow.UserMessage(workflow.KindOf(err)), err)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Detected pallets: %d\n", suggested)
			}

			if !cmd.Flags().Changed("count") {
				count = strconv.Itoa(suggested)
			}
			n, warning := workflow.ResolveCount(count)
			if warning != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", warning)
			}

			if !confirm {
				fmt.Fprintf(cmd.OutOrStdout(), "Would save %s with reference %q and count %d (pass --confirm to save)\n",
					workflow.FileName(reference, cfg.Naming.DefaultBaseName, *cfg.Naming.ReplaceNewlines), reference, n)
				return nil
			}

			result, err := o.Save(ctx, workflow.Confirmation{
				Reference: reference,
				Photo:     p.Data,
				Count:     n,
			})
			if err != nil {
				slog.Error("Save failed", "error", err)
				return fmt.Errorf("%s", workflow.UserMessage(workflow.KindOf(err)))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Data saved successfully.\n  file: %s\n  link: %s\n  row:  %v\n", result.FileName, result.FileURL, result.Row.Values())
			return nil
		},
	}

	cmd.Flags().StringVar(&reference, "reference", "", "Document reference (e.g. PT123456)")
	cmd.Flags().StringVar(&photoPath, "photo", "", "Path to the pallet photo (required)")
	cmd.Flags().StringVar(&count, "count", "", "Pallet count override (defaults to the detected count)")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Upload the photo and append the log row")

	_ = cmd.MarkFlagRequired("photo")
	return cmd
}
