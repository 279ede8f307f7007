// Package storage is the object-storage collaborator. The core only ever
// stores the URL strings it returns, never binary payloads.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// ObjectStorage accepts a file and returns a stable URL for it.
type ObjectStorage interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// LocalStorage writes uploads to a directory on disk and serves them under
// a base URL. Object names are random, the original filename only
// contributes its extension.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage creates the upload directory if needed.
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{dir: dir, baseURL: baseURL}, nil
}

// Save streams the file to disk and returns its URL.
func (s *LocalStorage) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + filepath.Ext(filename)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return path.Join(s.baseURL, name), nil
}
