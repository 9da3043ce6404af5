package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/palletlog/palletlog/internal/models"
	"github.com/xuri/excelize/v2"
)

// XLSXLedger appends rows to the first sheet of a local workbook.
// The workbook is created on the first append.
type XLSXLedger struct {
	path string
	mu   sync.Mutex
}

func NewXLSXLedger(path string) *XLSXLedger {
	return &XLSXLedger{path: path}
}

func (x *XLSXLedger) Append(ctx context.Context, row models.LogRow) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	f, err := openOrCreate(x.path)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := f.GetSheetList()[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("failed to compute cell: %w", err)
	}
	values := row.Values()
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	if err := f.SaveAs(x.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", x.path, err)
	}
	return nil
}

// ReadXLSX returns all rows of the first sheet of the workbook at path
func ReadXLSX(path string) ([]models.LogRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetList()[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	out := make([]models.LogRow, 0, len(rows))
	for i, cols := range rows {
		for len(cols) < 4 {
			cols = append(cols, "")
		}
		count, err := strconv.ParseInt(cols[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid count %q: %w", i+1, cols[2], err)
		}
		out = append(out, models.LogRow{
			Timestamp: cols[0],
			Reference: cols[1],
			Count:     count,
			FileURL:   cols[3],
		})
	}
	return out, nil
}

func openOrCreate(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return f, nil
}
