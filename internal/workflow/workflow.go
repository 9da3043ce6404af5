package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/palletlog/palletlog/internal/detection"
	"github.com/palletlog/palletlog/internal/filestore"
	"github.com/palletlog/palletlog/internal/ledger"
	"github.com/palletlog/palletlog/internal/models"
	"github.com/palletlog/palletlog/internal/photo"
)

// InvalidCountWarning is shown when the count override is not an integer
const InvalidCountWarning = "Pallet count is invalid. Defaulting to 0."

// Backends is an authorized pair of file store and ledger
type Backends struct {
	Store  filestore.Store
	Ledger ledger.Appender
}

// Connector performs the credential exchange and returns ready backends
type Connector interface {
	Connect(ctx context.Context) (*Backends, error)
}

// Options controls naming and formatting of persisted records
type Options struct {
	FolderName        string
	DefaultBaseName   string
	ReplaceNewlines   bool
	ViewerURLTemplate string
	// Now defaults to time.Now
	Now func() time.Time
}

// Confirmation is the user's explicit save action
type Confirmation struct {
	Reference string
	Photo     []byte
	Count     int
}

// Result describes a completed save
type Result struct {
	FolderID string
	FileName string
	FileID   string
	FileURL  string
	Row      models.LogRow
}

// Orchestrator runs the detection and persistence stages
type Orchestrator struct {
	detector  *detection.Adapter
	connector Connector
	opts      Options
}

func New(detector *detection.Adapter, connector Connector, opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		detector:  detector,
		connector: connector,
		opts:      opts,
	}
}

// Suggest returns the advisory pallet count for a photo. A detection
// failure yields 0 and a DetectionError; callers show it and carry on.
func (o *Orchestrator) Suggest(ctx context.Context, image []byte) (int, error) {
	s := o.detector.Suggest(ctx, image)
	if s.Err != nil {
		return 0, stageError(DetectionError, "detect pallets", s.Err)
	}
	return s.Count, nil
}

// ResolveCount parses the user's count text. The returned warning is
// non-empty when the input was rejected and the count defaulted to 0.
func ResolveCount(input string) (int, string) {
	n, ok := detection.ParseCount(input)
	if !ok {
		return 0, InvalidCountWarning
	}
	return n, ""
}

// Save resolves the destination folder, uploads the photo and appends the
// log row, in that order. It stops at the first failure; a file uploaded
// before an append failure is left in place and reported in Error.FileID.
func (o *Orchestrator) Save(ctx context.Context, c Confirmation) (*Result, error) {
	backends, err := o.connector.Connect(ctx)
	if err != nil {
		return nil, stageError(AuthError, "authorize", err)
	}

	if len(c.Photo) == 0 {
		return nil, stageError(UploadError, "upload photo", errors.New("no photo captured"))
	}

	folderID, err := filestore.ResolveFolder(ctx, backends.Store, o.opts.FolderName)
	if err != nil {
		return nil, stageError(UploadError, "resolve folder", err)
	}

	fileName := FileName(c.Reference, o.opts.DefaultBaseName, o.opts.ReplaceNewlines)
	fileID, err := backends.Store.Upload(ctx, folderID, fileName, photo.MIMEType, bytes.NewReader(c.Photo))
	if err != nil {
		return nil, stageError(UploadError, "upload photo", err)
	}
	slog.Info("Uploaded photo", "name", fileName, "id", fileID, "folder", folderID)

	row := models.LogRow{
		Timestamp: o.opts.Now().Format(models.TimestampLayout),
		Reference: c.Reference,
		Count:     int64(c.Count),
		FileURL:   ViewerURL(o.opts.ViewerURLTemplate, fileID),
	}
	if err := backends.Ledger.Append(ctx, row); err != nil {
		slog.Error("Ledger append failed after upload, file left in store", "file_id", fileID, "error", err)
		return nil, &Error{Kind: AppendError, Op: "append row", FileID: fileID, Err: err}
	}

	return &Result{
		FolderID: folderID,
		FileName: fileName,
		FileID:   fileID,
		FileURL:  row.FileURL,
		Row:      row,
	}, nil
}

// FileName derives the upload name from the reference text
func FileName(reference, defaultBase string, replaceNewlines bool) string {
	base := strings.TrimSpace(reference)
	if base == "" {
		return defaultBase + ".jpg"
	}

	base = strings.ReplaceAll(base, " ", "_")
	if replaceNewlines {
		base = strings.NewReplacer("\r\n", "_", "\n", "_").Replace(base)
	}
	return base + ".jpg"
}

// ViewerURL substitutes the file id into the viewer URL template
func ViewerURL(template, fileID string) string {
	return fmt.Sprintf(template, fileID)
}
