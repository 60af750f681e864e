package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dooh/internal/utils/logger"
)

// LocalStorage writes objects below a directory that the API serves as
// static files.
type LocalStorage struct {
	basePath  string
	publicURL string
	logger    *logger.Logger
}

func NewLocalStorage(basePath, publicURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", basePath, err)
	}
	return &LocalStorage{
		basePath:  basePath,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger.New("LOCAL-STORAGE"),
	}, nil
}

func (l *LocalStorage) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.Clean("/" + key)[1:]
	if clean == "" || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}

	dst := filepath.Join(l.basePath, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", l.logger.Error("Failed to create directory for %s", err, key)
	}
	if err := os.WriteFile(dst, body, 0o644); err != nil {
		return "", l.logger.Error("Failed to write %s", err, key)
	}

	l.logger.Debug("Stored %s (%s, %d bytes)", clean, contentType, len(body))
	return l.publicURL + "/" + escapeKey(filepath.ToSlash(clean)), nil
}

// Dir is the directory served under the public URL.
func (l *LocalStorage) Dir() string {
	return l.basePath
}
