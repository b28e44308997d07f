package filestorage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/campusprint/internal/pkg/apperrors"
	"github.com/yigit/campusprint/internal/pkg/logger"
)

// DefaultMaxBytes is the upload limit when none is configured
const DefaultMaxBytes int64 = 16 << 20

var (
	allowedExtensions = []string{"pdf", "doc", "docx"}
	unsafeChars       = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// LocalStorage handles saving documents to the local filesystem.
type LocalStorage struct {
	basePath string
	maxBytes int64
}

// NewLocalStorage creates the storage directory and returns a LocalStorage.
// maxBytes <= 0 selects DefaultMaxBytes.
func NewLocalStorage(basePath string, maxBytes int64) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &LocalStorage{basePath: basePath, maxBytes: maxBytes}, nil
}

// AllowedExtensions returns a copy of the extension allow-list
func (ls *LocalStorage) AllowedExtensions() []string {
	return append([]string(nil), allowedExtensions...)
}

// MaxBytes returns the configured size limit
func (ls *LocalStorage) MaxBytes() int64 {
	return ls.maxBytes
}

// Save stores an uploaded document as <16 hex>_<sanitized name>
func (ls *LocalStorage) Save(fileHeader *multipart.FileHeader) (*StoredFile, error) {
	if fileHeader == nil || fileHeader.Filename == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrNoFile, "No file selected")
	}

	ext, ok := AllowedExtension(fileHeader.Filename)
	if !ok {
		return nil, apperrors.NewValidationError(apperrors.ErrInvalidFileType,
			"Only "+strings.ToUpper(strings.Join(allowedExtensions, ", "))+" files are allowed")
	}
	if fileHeader.Size > ls.maxBytes {
		return nil, apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("File exceeds the %d byte limit", ls.maxBytes))
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	name := SanitizeFilename(fileHeader.Filename)
	if !strings.HasSuffix(strings.ToLower(name), "."+ext) {
		name = "document." + ext
	}
	storedName := randomPrefix() + "_" + name
	dstPath := filepath.Join(ls.basePath, storedName)

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}

	// Header sizes are client supplied, so the copy is capped as well
	written, err := io.Copy(dst, io.LimitReader(src, ls.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dstPath)
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}
	if written > ls.maxBytes {
		_ = os.Remove(dstPath)
		return nil, apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("File exceeds the %d byte limit", ls.maxBytes))
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", storedName).Int64("size", written).Msg("File saved successfully")
	return &StoredFile{
		StoredName:   storedName,
		OriginalName: name,
		Path:         dstPath,
		Size:         written,
	}, nil
}

// Delete removes a file previously returned by Save. Missing files are not an error.
func (ls *LocalStorage) Delete(path string) error {
	if path == "" {
		return nil
	}

	// Only files directly under basePath may be removed
	physicalPath := filepath.Join(ls.basePath, filepath.Base(path))
	if err := os.Remove(physicalPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// AllowedExtension returns the lowercased extension of name and whether it is accepted
func AllowedExtension(name string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return ext, true
		}
	}
	return ext, false
}

// SanitizeFilename strips directory components and any character outside [A-Za-z0-9._-]
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

func randomPrefix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}
