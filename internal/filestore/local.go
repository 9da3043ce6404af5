package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps folders as subdirectories of Root. Files are written as
// <id>_<name> so that repeated names never overwrite each other.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store root: %w", err)
	}
	return &LocalStore{Root: root}, nil
}

func (l *LocalStore) FindFolders(ctx context.Context, name string) ([]Folder, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read store root: %w", err)
	}

	var folders []Folder
	for _, e := range entries {
		if e.IsDir() && e.Name() == name {
			folders = append(folders, Folder{ID: e.Name(), Name: e.Name()})
		}
	}
	return folders, nil
}

func (l *LocalStore) CreateFolder(ctx context.Context, name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	if err := os.Mkdir(filepath.Join(l.Root, name), 0755); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}
	return name, nil
}

func (l *LocalStore) Upload(ctx context.Context, parentID, name, mimeType string, data io.Reader) (string, error) {
	if err := validName(parentID); err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("invalid name %q", name)
	}

	id := uuid.NewString()
	path := l.Path(parentID, id, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return id, nil
}

// Path returns where a previously uploaded file lives on disk
func (l *LocalStore) Path(parentID, id, name string) string {
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	return filepath.Join(l.Root, parentID, id+"_"+name)
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}
