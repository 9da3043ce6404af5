package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/palletlog/palletlog/internal/config"
	"github.com/palletlog/palletlog/internal/detection"
	"github.com/palletlog/palletlog/internal/ledger"
	"github.com/palletlog/palletlog/internal/workflow"
)

type noDetector struct{}

func (noDetector) Infer(ctx context.Context, image []byte) (*detection.Result, error) {
	return &detection.Result{}, nil
}

func TestLocalBackendsEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.Backend = "local"
	cfg.Store.LocalDir = filepath.Join(dir, "store")
	cfg.Ledger.Backend = "xlsx"
	cfg.Ledger.XLSXPath = filepath.Join(dir, "ledger.xlsx")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}

	opts := Options(cfg)
	opts.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local) }
	o := workflow.New(detection.NewAdapter(noDetector{}), NewConnector(cfg), opts)

	result, err := o.Save(context.Background(), workflow.Confirmation{Reference: "PT 55", Photo: []byte("jpeg"), Count: 2})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.FileName != "PT_55.jpg" {
		t.Errorf("Expected PT_55.jpg, got %s", result.FileName)
	}

	rows, err := ledger.ReadXLSX(cfg.Ledger.XLSXPath)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].Timestamp != "2026-01-02 03:04:05" || rows[0].Count != 2 || rows[0].FileURL != result.FileURL {
		t.Errorf("Unexpected row %+v", rows[0])
	}
}

func TestGoogleConnectAuthFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Google.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")
	cfg.Ledger.SpreadsheetID = "sheet"

	o := workflow.New(detection.NewAdapter(noDetector{}), NewConnector(cfg), Options(cfg))
	_, err := o.Save(context.Background(), workflow.Confirmation{Reference: "PT1", Photo: []byte("jpeg"), Count: 1})
	if !workflow.IsKind(err, workflow.AuthError) {
		t.Errorf("Expected AuthError, got %v", err)
	}
}

func TestXLSXLedgerSharedAcrossConnects(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.Backend = "local"
	cfg.Store.LocalDir = filepath.Join(dir, "store")
	cfg.Ledger.Backend = "xlsx"
	cfg.Ledger.XLSXPath = filepath.Join(dir, "ledger.xlsx")

	c := NewConnector(cfg)
	first, err := c.Connect(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := c.Connect(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if first.Ledger != second.Ledger {
		t.Error("Expected the same xlsx ledger on every connect")
	}
}
