package ledger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/palletlog/palletlog/internal/models"
	"github.com/parquet-go/parquet-go"
)

// ExportParquet writes rows to a parquet file at path
func ExportParquet(path string, rows []models.LogRow) error {
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write parquet %s: %w", path, err)
	}
	slog.Info("Exported ledger", "path", path, "rows", len(rows))
	return nil
}

// ReadParquet loads rows previously written by ExportParquet
func ReadParquet(path string) ([]models.LogRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[models.LogRow](pf)
	defer reader.Close()

	var out []models.LogRow
	batch := make([]models.LogRow, 128)
	for {
		n, err := reader.Read(batch)
		out = append(out, batch[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Read parquet ledger", "path", path, "rows", len(out))
	return out, nil
}
