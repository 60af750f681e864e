package storage

import (
	"context"
	"fmt"

	"dooh/internal/config"
)

// Storage uploads creative assets and returns publicly resolvable URLs.
type Storage interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// New picks the backend named by STORAGE_PROVIDER.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Provider {
	case "s3", "r2":
		return NewS3Storage(ctx, cfg.S3, cfg.Storage.Provider == "r2")
	case "local", "":
		return NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.PublicURL)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}
