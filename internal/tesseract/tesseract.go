package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"github.com/palletlog/palletlog/internal/providers"
)

// Tesseract runs OCR locally through libtesseract
type Tesseract struct{}

func New() *Tesseract {
	return &Tesseract{}
}

// ExtractText recognizes text in config.Image. config.Model selects the
// tesseract language (eng when empty); the prompt is ignored.
func (t *Tesseract) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	if len(config.Image) == 0 {
		return "", fmt.Errorf("no image for OCR")
	}

	client := gosseract.NewClient()
	defer client.Close()

	lang := config.Model
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return "", fmt.Errorf("failed to set tesseract language %s: %w", lang, err)
	}
	if err := client.SetImageFromBytes(config.Image); err != nil {
		return "", fmt.Errorf("failed to load image into tesseract: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR failed: %w", err)
	}
	return text, nil
}
