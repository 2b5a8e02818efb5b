package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"contract-backend/logger"
	"contract-backend/models"
	"contract-backend/repository"
	"contract-backend/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrInvalidFileType = errors.New("file type not allowed")
)

// allowedMimeTypes are the contract document formats accepted on upload
var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"text/plain":      true,
	"text/markdown":   true,
}

// FileStore persists uploaded file metadata
type FileStore interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FileService stores contract documents and their metadata
type FileService struct {
	files       FileStore
	storage     storage.Storage
	maxFileSize int64
}

// FileServiceOption is a functional option for FileService
type FileServiceOption func(*FileService)

// WithFileStore sets the file metadata store
func WithFileStore(files FileStore) FileServiceOption {
	return func(s *FileService) {
		s.files = files
	}
}

// WithStorage sets the document storage backend
func WithStorage(st storage.Storage) FileServiceOption {
	return func(s *FileService) {
		s.storage = st
	}
}

// WithMaxFileSize sets the upload size limit in bytes
func WithMaxFileSize(n int64) FileServiceOption {
	return func(s *FileService) {
		s.maxFileSize = n
	}
}

// NewFileService creates a new file service with a 10MB default limit
func NewFileService(opts ...FileServiceOption) *FileService {
	s := &FileService{maxFileSize: 10 * 1024 * 1024}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxFileSize returns the upload size limit in bytes
func (s *FileService) MaxFileSize() int64 {
	return s.maxFileSize
}

// UploadFileRequest describes one uploaded document
type UploadFileRequest struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}

// UploadFile validates and stores a document, then records its metadata
func (s *FileService) UploadFile(ctx context.Context, req UploadFileRequest) (*models.File, error) {
	if s.files == nil || s.storage == nil {
		return nil, errors.New("file service not configured")
	}
	if req.Size > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrFileTooLarge, req.Size, s.maxFileSize)
	}

	mimeType := normalizeMimeType(req.MimeType, req.Filename)
	if !allowedMimeTypes[mimeType] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, mimeType)
	}

	fileID := uuid.New()
	storagePath, err := s.storage.Upload(ctx, fileID, req.Filename, req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	file := &models.File{
		ID:          fileID,
		Filename:    filepath.Base(req.Filename),
		MimeType:    mimeType,
		Size:        req.Size,
		StoragePath: storagePath,
	}
	if err := s.files.Create(ctx, file); err != nil {
		// Try to clean up the stored document
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			logger.Log.WithError(delErr).WithField("storage_path", storagePath).Warn("Failed to remove orphaned document")
		}
		return nil, fmt.Errorf("failed to save file record: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"file_id":   file.ID,
		"mime_type": file.MimeType,
		"size":      file.Size,
	}).Info("Contract document uploaded")

	return file, nil
}

// GetFile returns the metadata of a document
func (s *FileService) GetFile(ctx context.Context, id uuid.UUID) (*models.File, error) {
	if s.files == nil {
		return nil, errors.New("file store not set")
	}
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return file, nil
}

// OpenFile returns the metadata and content of a document. The caller closes the reader.
func (s *FileService) OpenFile(ctx context.Context, id uuid.UUID) (*models.File, io.ReadCloser, error) {
	file, err := s.GetFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.storage.Download(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return file, reader, nil
}

// ReadText returns the content of a plain-text document
func (s *FileService) ReadText(ctx context.Context, id uuid.UUID) (*models.File, string, error) {
	file, err := s.GetFile(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !file.IsPlainText() {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFile, file.MimeType)
	}

	reader, err := s.storage.Download(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrFileNotFound
		}
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, s.maxFileSize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, "", fmt.Errorf("%w: not valid UTF-8", ErrUnsupportedFile)
	}
	return file, string(data), nil
}

// normalizeMimeType drops parameters such as charset and infers a missing
// or generic type from the file extension
func normalizeMimeType(mimeType, filename string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		return storage.ContentType(filename)
	}
	return mimeType
}
