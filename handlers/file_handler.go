package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"contract-backend/service"

	"github.com/gin-gonic/gin"
)

// FileHandler handles HTTP requests for contract documents
type FileHandler struct {
	files *service.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(files *service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// UploadFile handles POST /api/files/upload
func (h *FileHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "File is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", err.Error())
		return
	}
	defer file.Close()

	record, err := h.files.UploadFile(c.Request.Context(), service.UploadFileRequest{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Content:  file,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			respondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
				fmt.Sprintf("File size exceeds maximum of %d bytes", h.files.MaxFileSize()))
		case errors.Is(err, service.ErrInvalidFileType):
			respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "File type not allowed. Allowed types: PDF, TXT, MD")
		default:
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", err.Error())
		}
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"id":         record.ID,
		"filename":   record.Filename,
		"mime_type":  record.MimeType,
		"size":       record.Size,
		"created_at": record.CreatedAt,
	})
}

// GetFile handles GET /api/files/:id
func (h *FileHandler) GetFile(c *gin.Context) {
	id, ok := parseID(c, "Invalid file ID format")
	if !ok {
		return
	}

	file, reader, err := h.files.OpenFile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "File not found")
			return
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DOWNLOAD_FAILED", err.Error())
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", file.Filename),
	})
}
