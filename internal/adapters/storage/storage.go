// Package storage holds the business photo backends.
package storage

import (
	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/pkg/config"
)

// New selects the backend named by cfg.Driver
func New(cfg *config.StorageConfig) (providers.FileStorage, error) {
	if cfg.Driver == "s3" {
		return NewS3Storage(cfg)
	}
	return NewLocalStorage(cfg.UploadDir)
}
