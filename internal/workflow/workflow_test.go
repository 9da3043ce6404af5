package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/palletlog/palletlog/internal/config"
	"github.com/palletlog/palletlog/internal/detection"
	"github.com/palletlog/palletlog/internal/filestore"
	"github.com/palletlog/palletlog/internal/models"
)

type uploadedFile struct {
	ID       string
	ParentID string
	Name     string
	MIMEType string
	Data     []byte
}

type memStore struct {
	mu      sync.Mutex
	folders []filestore.Folder
	files   []uploadedFile
	created int
	nextID  int
	findErr error
	upErr   error
}

func (m *memStore) FindFolders(ctx context.Context, name string) ([]filestore.Folder, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []filestore.Folder
	for _, f := range m.folders {
		if f.Name == name {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memStore) CreateFolder(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
	m.nextID++
	id := fmt.Sprintf("folder%d", m.nextID)
	m.folders = append(m.folders, filestore.Folder{ID: id, Name: name})
	return id, nil
}

func (m *memStore) Upload(ctx context.Context, parentID, name, mimeType string, data io.Reader) (string, error) {
	if m.upErr != nil {
		return "", m.upErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("file%dXYZ", m.nextID)
	m.files = append(m.files, uploadedFile{ID: id, ParentID: parentID, Name: name, MIMEType: mimeType, Data: b})
	return id, nil
}

type memLedger struct {
	rows []models.LogRow
	err  error
}

func (l *memLedger) Append(ctx context.Context, row models.LogRow) error {
	if l.err != nil {
		return l.err
	}
	l.rows = append(l.rows, row)
	return nil
}

type fakeConnector struct {
	backends *Backends
	err      error
}

func (f *fakeConnector) Connect(ctx context.Context) (*Backends, error) {
	return f.backends, f.err
}

type fakeDetector struct {
	n   int
	err error
}

func (f *fakeDetector) Infer(ctx context.Context, image []byte) (*detection.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &detection.Result{Predictions: make([]detection.Prediction, f.n)}, nil
}

var fixedNow = time.Date(2026, 10, 19, 14, 5, 9, 0, time.Local)

func newTestOrchestrator(det detection.Detector, store *memStore, led *memLedger) *Orchestrator {
	return New(detection.NewAdapter(det), &fakeConnector{backends: &Backends{Store: store, Ledger: led}}, Options{
		FolderName:        config.DefaultFolderName,
		DefaultBaseName:   config.DefaultBaseName,
		ReplaceNewlines:   true,
		ViewerURLTemplate: config.DefaultViewerURLTemplate,
		Now:               func() time.Time { return fixedNow },
	})
}

var viewerURLPattern = regexp.MustCompile(`^https://drive\.google\.com/file/d/([^/]+)/view\?usp=sharing$`)

func TestHappyPath(t *testing.T) {
	store := &memStore{}
	led := &memLedger{}
	o := newTestOrchestrator(&fakeDetector{n: 3}, store, led)
	ctx := context.Background()
	photo := []byte("jpeg-bytes")

	suggested, err := o.Suggest(ctx, photo)
	if err != nil {
		t.Fatalf("Expected no detection error, got %v", err)
	}
	if suggested != 3 {
		t.Errorf("Expected suggested count 3, got %d", suggested)
	}

	count, warning := ResolveCount("3")
	if warning != "" {
		t.Errorf("Expected no warning, got %s", warning)
	}

	result, err := o.Save(ctx, Confirmation{Reference: "PT123456", Photo: photo, Count: count})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(led.rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(led.rows))
	}
	row := led.rows[0]
	if row.Timestamp != "2026-10-19 14:05:09" {
		t.Errorf("Expected timestamp 2026-10-19 14:05:09, got %s", row.Timestamp)
	}
	if row.Reference != "PT123456" || row.Count != 3 {
		t.Errorf("Expected (PT123456, 3), got (%s, %d)", row.Reference, row.Count)
	}
	m := viewerURLPattern.FindStringSubmatch(row.FileURL)
	if m == nil {
		t.Fatalf("Expected viewer URL, got %s", row.FileURL)
	}
	if m[1] != result.FileID || store.files[0].ID != result.FileID {
		t.Errorf("Expected URL to contain uploaded id %s, got %s", result.FileID, m[1])
	}
	if store.files[0].Name != "PT123456.jpg" {
		t.Errorf("Expected file name PT123456.jpg, got %s", store.files[0].Name)
	}
	if store.files[0].MIMEType != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", store.files[0].MIMEType)
	}
	if store.files[0].ParentID != result.FolderID {
		t.Errorf("Expected upload under folder %s, got %s", result.FolderID, store.files[0].ParentID)
	}
}

func TestDetectionFailureManualCount(t *testing.T) {
	store := &memStore{}
	led := &memLedger{}
	o := newTestOrchestrator(&fakeDetector{err: errors.New("inference server down")}, store, led)
	ctx := context.Background()

	suggested, err := o.Suggest(ctx, []byte("jpeg"))
	if !IsKind(err, DetectionError) {
		t.Errorf("Expected DetectionError, got %v", err)
	}
	if suggested != 0 {
		t.Errorf("Expected suggested count 0, got %d", suggested)
	}

	count, _ := ResolveCount("5")
	if _, err := o.Save(ctx, Confirmation{Reference: "", Photo: []byte("jpeg"), Count: count}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if store.files[0].Name != "pallet_image.jpg" {
		t.Errorf("Expected pallet_image.jpg, got %s", store.files[0].Name)
	}
	if led.rows[0].Count != 5 {
		t.Errorf("Expected count 5, got %d", led.rows[0].Count)
	}
}

func TestAppendFailureLeavesOrphan(t *testing.T) {
	store := &memStore{}
	led := &memLedger{err: errors.New("sheet locked")}
	o := newTestOrchestrator(&fakeDetector{n: 1}, store, led)

	result, err := o.Save(context.Background(), Confirmation{Reference: "PT1", Photo: []byte("jpeg"), Count: 1})
	if result != nil {
		t.Errorf("Expected no result, got %+v", result)
	}
	if !IsKind(err, AppendError) {
		t.Fatalf("Expected AppendError, got %v", err)
	}
	if len(led.rows) != 0 {
		t.Errorf("Expected no log row, got %d", len(led.rows))
	}
	if len(store.files) != 1 {
		t.Fatalf("Expected uploaded file to remain, got %d files", len(store.files))
	}

	var we *Error
	if !errors.As(err, &we) || we.FileID != store.files[0].ID {
		t.Errorf("Expected error to carry orphaned file id %s, got %v", store.files[0].ID, err)
	}
	if UserMessage(KindOf(err)) == "" {
		t.Error("Expected a user-facing failure message")
	}
}

func TestSaveStageErrors(t *testing.T) {
	tests := []struct {
		name      string
		connector Connector
		photo     []byte
		wantKind  Kind
	}{
		{
			name:      "auth failure",
			connector: &fakeConnector{err: errors.New("invalid_grant")},
			photo:     []byte("jpeg"),
			wantKind:  AuthError,
		},
		{
			name:      "folder lookup failure",
			connector: &fakeConnector{backends: &Backends{Store: &memStore{findErr: errors.New("403")}, Ledger: &memLedger{}}},
			photo:     []byte("jpeg"),
			wantKind:  UploadError,
		},
		{
			name:      "upload failure",
			connector: &fakeConnector{backends: &Backends{Store: &memStore{upErr: errors.New("quota")}, Ledger: &memLedger{}}},
			photo:     []byte("jpeg"),
			wantKind:  UploadError,
		},
		{
			name:      "no photo",
			connector: &fakeConnector{backends: &Backends{Store: &memStore{}, Ledger: &memLedger{}}},
			wantKind:  UploadError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(detection.NewAdapter(&fakeDetector{}), tt.connector, Options{
				FolderName:        "Pallet",
				DefaultBaseName:   "pallet_image",
				ViewerURLTemplate: config.DefaultViewerURLTemplate,
			})
			_, err := o.Save(context.Background(), Confirmation{Reference: "PT1", Photo: tt.photo, Count: 1})
			if KindOf(err) != tt.wantKind {
				t.Errorf("Expected %s, got %v", tt.wantKind, err)
			}
		})
	}
}

func TestSaveReusesFolder(t *testing.T) {
	store := &memStore{}
	led := &memLedger{}
	o := newTestOrchestrator(&fakeDetector{}, store, led)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := o.Save(ctx, Confirmation{Reference: "PT 1", Photo: []byte("jpeg"), Count: i}); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	if store.created != 1 {
		t.Errorf("Expected one folder created, got %d", store.created)
	}
	ids := map[string]bool{}
	for _, f := range store.files {
		if f.Name != "PT_1.jpg" {
			t.Errorf("Expected PT_1.jpg, got %s", f.Name)
		}
		ids[f.ID] = true
	}
	if len(ids) != 3 {
		t.Errorf("Expected 3 distinct file ids, got %d", len(ids))
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name            string
		reference       string
		replaceNewlines bool
		expected        string
	}{
		{"plain", "PT123456", true, "PT123456.jpg"},
		{"trimmed", "  PT123456 \t", true, "PT123456.jpg"},
		{"inner spaces", " PT 12 34 ", true, "PT_12_34.jpg"},
		{"newlines replaced", "PT1\nPT2", true, "PT1_PT2.jpg"},
		{"crlf replaced", "PT1\r\nPT2", true, "PT1_PT2.jpg"},
		{"newlines kept", "PT1\nPT2", false, "PT1\nPT2.jpg"},
		{"empty", "", true, "pallet_image.jpg"},
		{"whitespace only", " \n\t ", true, "pallet_image.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FileName(tt.reference, "pallet_image", tt.replaceNewlines)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestResolveCount(t *testing.T) {
	tests := []struct {
		input       string
		expected    int
		wantWarning bool
	}{
		{"3", 3, false},
		{" 12 ", 12, false},
		{"abc", 0, true},
		{"", 0, true},
		{"4.0", 0, true},
	}
	for _, tt := range tests {
		n, warning := ResolveCount(tt.input)
		if n != tt.expected {
			t.Errorf("%q: expected %d, got %d", tt.input, tt.expected, n)
		}
		if (warning != "") != tt.wantWarning {
			t.Errorf("%q: expected warning %v, got %q", tt.input, tt.wantWarning, warning)
		}
	}
}

func TestErrorFormatting(t *testing.T) {
	err := &Error{Kind: AppendError, Op: "append row", FileID: "abc", Err: errors.New("boom")}
	if !strings.Contains(err.Error(), "abc") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Expected file id and cause in message, got %s", err.Error())
	}
	if !errors.Is(err, err.Err) {
		t.Error("Expected Unwrap to expose the cause")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("Expected plain errors to have no kind")
	}
}
