package detection

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// Detector is anything that can run inference on photo bytes
type Detector interface {
	Infer(ctx context.Context, image []byte) (*Result, error)
}

// Suggestion is the advisory count offered to the user
type Suggestion struct {
	Count int
	Err   error
}

// Adapter turns detection results into a suggested pallet count
type Adapter struct {
	detector Detector
}

// NewAdapter creates a new count adapter
func NewAdapter(d Detector) *Adapter {
	return &Adapter{detector: d}
}

// Suggest runs detection and returns the number of predictions.
// A failed call never blocks the caller: the count is 0 and Err is set.
func (a *Adapter) Suggest(ctx context.Context, image []byte) Suggestion {
	if a == nil || a.detector == nil {
		return Suggestion{}
	}

	result, err := a.detector.Infer(ctx, image)
	if err != nil {
		slog.Warn("Detection failed, defaulting count to 0", "error", err)
		return Suggestion{Err: err}
	}

	slog.Info("Detected pallets", "count", len(result.Predictions))
	return Suggestion{Count: len(result.Predictions)}
}

// ParseCount parses the user's count override. Non-integer input resolves
// to 0 and ok is false so the caller can show a warning.
func ParseCount(input string) (count int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, false
	}
	return n, true
}
