package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/palletlog/palletlog/internal/gemini"
	"github.com/palletlog/palletlog/internal/ollama"
	"github.com/palletlog/palletlog/internal/openai"
	"github.com/palletlog/palletlog/internal/providers"
	"github.com/palletlog/palletlog/internal/tesseract"
)

// ProviderNone disables OCR; the reference is typed by the user
const ProviderNone = "none"

// Service extracts document references from photos
type Service struct {
	name     string
	provider providers.Provider
	model    string
	prefix   string
}

// NewService creates an OCR service for the named provider.
// It returns nil for ProviderNone.
func NewService(name, model, prefix string) (*Service, error) {
	var p providers.Provider
	switch name {
	case "", ProviderNone:
		return nil, nil
	case "tesseract":
		p = tesseract.New()
	case "gemini":
		p = gemini.New()
	case "ollama":
		p = ollama.New()
	case "openai":
		p = openai.New()
	default:
		return nil, fmt.Errorf("unsupported OCR provider: %s", name)
	}

	if model == "" {
		model = getDefaultModel(name)
	}
	return NewServiceWithProvider(name, p, model, prefix), nil
}

// NewServiceWithProvider wraps an already constructed provider
func NewServiceWithProvider(name string, p providers.Provider, model, prefix string) *Service {
	return &Service{
		name:     name,
		provider: p,
		model:    model,
		prefix:   prefix,
	}
}

func getDefaultModel(provider string) string {
	switch provider {
	case "openai":
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			return "gpt-4o"
		}
		return model
	case "ollama":
		model := os.Getenv("OLLAMA_MODEL")
		if model == "" {
			return "mistral-small3.2:24b"
		}
		return model
	case "gemini":
		model := os.Getenv("GEMINI_MODEL")
		if model == "" {
			return "gemini-1.5-flash"
		}
		return model
	case "tesseract":
		return "eng"
	default:
		return ""
	}
}

func buildOCRPrompt() string {
	return `You are performing OCR (Optical Character Recognition) on a photo of a shipping document.

Transcribe every line of visible text exactly as it appears, one line per output line.
Preserve capitalization, digits and punctuation. Do not add commentary or explanations.

OUTPUT FORMAT:
Provide ONLY the extracted text. Do not include phrases like "Here is the text:".`
}

// Reference runs OCR on the image and returns the reference lines
func (s *Service) Reference(ctx context.Context, image []byte, mimeType string) (string, error) {
	text, err := s.provider.ExtractText(ctx, providers.Config{
		Model:       s.model,
		Temperature: 0.0,
		Prompt:      buildOCRPrompt(),
		Image:       image,
		MIMEType:    mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("%s OCR failed: %w", s.name, err)
	}

	ref := FilterPrefixed(text, s.prefix)
	slog.Info("Extracted OCR reference", "provider", s.name, "model", s.model, "text_length", len(text), "reference", ref)
	return ref, nil
}

// FilterPrefixed keeps the lines of text that start with prefix (after
// trimming surrounding whitespace) and joins them with newlines.
func FilterPrefixed(text, prefix string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && strings.HasPrefix(line, prefix) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
