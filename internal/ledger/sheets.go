package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/palletlog/palletlog/internal/models"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsLedger appends rows to a Google Sheets spreadsheet
type SheetsLedger struct {
	srv           *sheets.Service
	spreadsheetID string
}

func NewSheetsLedger(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*SheetsLedger, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsLedger{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// Append opens the spreadsheet, finds its first sheet and appends row after
// the last non-empty row. Values are written RAW so references stay text.
func (s *SheetsLedger) Append(ctx context.Context, row models.LogRow) error {
	title, err := s.firstSheetTitle(ctx)
	if err != nil {
		return err
	}

	vr := &sheets.ValueRange{
		Values: [][]interface{}{row.Values()},
	}
	resp, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, quoteSheet(title), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}

	if resp.Updates != nil {
		slog.Info("Appended ledger row", "range", resp.Updates.UpdatedRange)
	}
	return nil
}

func (s *SheetsLedger) firstSheetTitle(ctx context.Context) (string, error) {
	ss, err := s.srv.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties(title,index)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to open spreadsheet %s: %w", s.spreadsheetID, err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return "", fmt.Errorf("spreadsheet %s has no sheets", s.spreadsheetID)
	}

	first := ss.Sheets[0].Properties
	for _, sh := range ss.Sheets[1:] {
		if sh.Properties != nil && sh.Properties.Index < first.Index {
			first = sh.Properties
		}
	}
	return first.Title, nil
}

// quoteSheet turns a sheet title into an A1 range covering the whole sheet
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
