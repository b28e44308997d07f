package filestorage

import (
	"mime/multipart"
)

// StoredFile describes an upload written to storage
type StoredFile struct {
	StoredName   string // Collision-free name on disk
	OriginalName string // Sanitized client filename
	Path         string // Full filesystem path
	Size         int64  // Size in bytes
}

// FileStorage defines the interface for document storage operations
type FileStorage interface {
	// Save validates the upload and writes it under a unique name
	Save(fileHeader *multipart.FileHeader) (*StoredFile, error)

	// Delete removes a stored file, ignoring files that are already gone
	Delete(path string) error

	// AllowedExtensions lists the accepted extensions without dots
	AllowedExtensions() []string

	// MaxBytes is the largest accepted upload
	MaxBytes() int64
}
