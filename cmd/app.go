package cmd

import (
	"fmt"
	"os"

	"github.com/palletlog/palletlog/internal/backend"
	"github.com/palletlog/palletlog/internal/config"
	"github.com/palletlog/palletlog/internal/detection"
	"github.com/palletlog/palletlog/internal/ocr"
	"github.com/palletlog/palletlog/internal/photo"
	"github.com/palletlog/palletlog/internal/workflow"
	"github.com/spf13/cobra"
)

// loadConfig reads the config file; an explicitly passed --config must exist
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	required := cmd.Flags().Changed("config")
	cfg, err := config.Load(configPath, required)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func newDetector(cfg *config.Config) *detection.Adapter {
	client := detection.NewClient(cfg.Detection.Endpoint, cfg.Detection.APIKey, cfg.Detection.ModelID)
	return detection.NewAdapter(client)
}

func newOrchestrator(cfg *config.Config) *workflow.Orchestrator {
	return workflow.New(newDetector(cfg), backend.NewConnector(cfg), backend.Options(cfg))
}

func newOCRService(cfg *config.Config) (*ocr.Service, error) {
	return ocr.NewService(cfg.OCR.Provider, cfg.OCR.Model, cfg.OCR.Prefix)
}

func readPhotoFile(path string, maxEdge int) (*photo.Photo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo %s: %w", path, err)
	}
	return photo.Normalize(raw, maxEdge)
}
