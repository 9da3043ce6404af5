package filestore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveStore stores files in Google Drive
type DriveStore struct {
	srv *drive.Service
}

// NewDriveStore creates a Drive-backed store. Callers supply the
// authorized transport through opts (option.WithHTTPClient etc).
func NewDriveStore(ctx context.Context, opts ...option.ClientOption) (*DriveStore, error) {
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveStore{srv: srv}, nil
}

func (d *DriveStore) FindFolders(ctx context.Context, name string) ([]Folder, error) {
	resp, err := d.srv.Files.List().
		Q(folderQuery(name)).
		Spaces("drive").
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drive list failed: %w", err)
	}

	folders := make([]Folder, 0, len(resp.Files))
	for _, f := range resp.Files {
		folders = append(folders, Folder{ID: f.Id, Name: f.Name})
	}
	return folders, nil
}

func (d *DriveStore) CreateFolder(ctx context.Context, name string) (string, error) {
	f, err := d.srv.Files.Create(&drive.File{
		Name:     name,
		MimeType: FolderMIMEType,
	}).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("drive folder create failed: %w", err)
	}
	return f.Id, nil
}

func (d *DriveStore) Upload(ctx context.Context, parentID, name, mimeType string, data io.Reader) (string, error) {
	f, err := d.srv.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{parentID},
	}).Media(data, googleapi.ContentType(mimeType)).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("drive upload failed: %w", err)
	}
	if f.Id == "" {
		return "", fmt.Errorf("drive upload returned no file id")
	}
	return f.Id, nil
}

// folderQuery builds the Drive search expression for a folder name
func folderQuery(name string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(name)
	return fmt.Sprintf("mimeType='%s' and name='%s' and trashed=false", FolderMIMEType, escaped)
}
