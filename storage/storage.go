package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"contract-backend/config"

	"github.com/google/uuid"
)

// Storage stores uploaded contract documents
type Storage interface {
	// Upload stores a document and returns its storage path
	Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error)

	// Download retrieves a document by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes a document by storage path
	Delete(ctx context.Context, storagePath string) error
}

// Type is the storage backend type
type Type string

const (
	TypeLocal Type = "local"
	TypeS3    Type = "s3"
)

// New creates the storage backend selected by cfg
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch Type(cfg.Type) {
	case TypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case TypeS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// storagePrefix keeps contract documents apart from anything else in a shared bucket
const storagePrefix = "contracts"

// generateStoragePath builds a unique, sanitized path for a document
func generateStoragePath(fileID uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	baseName := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	baseName = strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "..", "_").Replace(baseName)
	if baseName == "" {
		baseName = "contrat"
	}

	id := fileID.String()
	return fmt.Sprintf("%s/%s/%s_%s%s", storagePrefix, id[:2], id, baseName, ext)
}

// ContentType determines the content type of a contract document from its name
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".md":
		return "text/markdown"
	default:
		return "application/octet-stream"
	}
}
