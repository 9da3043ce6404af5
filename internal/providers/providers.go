package providers

import (
	"context"
)

// Config represents the configuration for a vision text-extraction call
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	Image       []byte
	// MIMEType of Image, e.g. image/jpeg
	MIMEType string
}

// Provider defines the interface for an OCR-capable provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}
