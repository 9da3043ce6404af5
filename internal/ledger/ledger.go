package ledger

import (
	"context"

	"github.com/palletlog/palletlog/internal/models"
)

// Appender appends log rows to the first sheet of a tracking spreadsheet
type Appender interface {
	Append(ctx context.Context, row models.LogRow) error
}
