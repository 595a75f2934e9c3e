package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Josh363/small-business-app/internal/domain/providers"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

// LocalStorage writes uploads below a directory served as static files
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the upload directory if needed
func NewLocalStorage(dir string) (providers.FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Put writes data to dir/name, replacing any previous file
func (s *LocalStorage) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if name != filepath.Base(name) {
		return "", apperrors.NewValidationError("Invalid file name")
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", apperrors.NewInternalError("Problem with file upload", err)
	}
	return name, nil
}
