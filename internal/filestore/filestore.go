package filestore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// FolderMIMEType marks folder items in Drive-like stores
const FolderMIMEType = "application/vnd.google-apps.folder"

// Folder is a container in the remote file store
type Folder struct {
	ID   string
	Name string
}

// Store is the subset of a file store palletlog needs
type Store interface {
	// FindFolders returns non-trashed folders named exactly name, in backend order
	FindFolders(ctx context.Context, name string) ([]Folder, error)
	CreateFolder(ctx context.Context, name string) (string, error)
	// Upload creates a new file under parentID and returns its generated id
	Upload(ctx context.Context, parentID, name, mimeType string, data io.Reader) (string, error)
}

// ResolveFolder returns the id of the first folder named name, creating
// the folder when none exists. The first match is whatever the backend
// returned first; no ordering is imposed.
func ResolveFolder(ctx context.Context, s Store, name string) (string, error) {
	folders, err := s.FindFolders(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to look up folder %q: %w", name, err)
	}

	if len(folders) > 0 {
		if len(folders) > 1 {
			slog.Warn("Multiple folders match, using first", "name", name, "matches", len(folders), "id", folders[0].ID)
		}
		return folders[0].ID, nil
	}

	id, err := s.CreateFolder(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to create folder %q: %w", name, err)
	}

	slog.Info("Created destination folder", "name", name, "id", id)
	return id, nil
}
