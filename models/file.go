package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// File represents an uploaded contract document
type File struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsPlainText reports whether the document content can be analysed as is
func (f *File) IsPlainText() bool {
	return strings.HasPrefix(f.MimeType, "text/")
}
