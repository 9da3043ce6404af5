package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/palletlog/palletlog/internal/config"
	"github.com/palletlog/palletlog/internal/filestore"
	"github.com/palletlog/palletlog/internal/gauth"
	"github.com/palletlog/palletlog/internal/ledger"
	"github.com/palletlog/palletlog/internal/workflow"
	"google.golang.org/api/option"
)

// Connector builds the configured file store and ledger. Google-backed
// stores get a fresh authorized session on every Connect. The xlsx ledger
// is shared so appends within one process are serialised.
type Connector struct {
	cfg  *config.Config
	xlsx *ledger.XLSXLedger
}

func NewConnector(cfg *config.Config) *Connector {
	c := &Connector{cfg: cfg}
	if cfg.Ledger.Backend == "xlsx" {
		c.xlsx = ledger.NewXLSXLedger(cfg.Ledger.XLSXPath)
	}
	return c
}

func (c *Connector) Connect(ctx context.Context) (*workflow.Backends, error) {
	var opts []option.ClientOption
	if c.cfg.NeedsGoogle() {
		scopes, err := c.cfg.ScopeList()
		if err != nil {
			return nil, err
		}
		session, err := gauth.AuthorizeFile(ctx, c.cfg.Google.CredentialsFile, scopes)
		if err != nil {
			return nil, err
		}
		opts = session.ClientOptions()
	}

	store, err := c.store(ctx, opts)
	if err != nil {
		return nil, err
	}
	led, err := c.ledger(ctx, opts)
	if err != nil {
		return nil, err
	}

	slog.Debug("Connected backends", "store", c.cfg.Store.Backend, "ledger", c.cfg.Ledger.Backend)
	return &workflow.Backends{Store: store, Ledger: led}, nil
}

func (c *Connector) store(ctx context.Context, opts []option.ClientOption) (filestore.Store, error) {
	switch c.cfg.Store.Backend {
	case "drive":
		return filestore.NewDriveStore(ctx, opts...)
	case "local":
		return filestore.NewLocalStore(c.cfg.Store.LocalDir)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", c.cfg.Store.Backend)
	}
}

func (c *Connector) ledger(ctx context.Context, opts []option.ClientOption) (ledger.Appender, error) {
	switch c.cfg.Ledger.Backend {
	case "sheets":
		return ledger.NewSheetsLedger(ctx, c.cfg.Ledger.SpreadsheetID, opts...)
	case "xlsx":
		return c.xlsx, nil
	default:
		return nil, fmt.Errorf("unsupported ledger backend: %s", c.cfg.Ledger.Backend)
	}
}

// Options maps configuration onto workflow options
func Options(cfg *config.Config) workflow.Options {
	return workflow.Options{
		FolderName:        cfg.Store.FolderName,
		DefaultBaseName:   cfg.Naming.DefaultBaseName,
		ReplaceNewlines:   *cfg.Naming.ReplaceNewlines,
		ViewerURLTemplate: cfg.Naming.ViewerURLTemplate,
	}
}
