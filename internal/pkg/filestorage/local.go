package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/okan/urcp/internal/pkg/logger"
)

// LocalStorage saves project attachments on the local filesystem.
type LocalStorage struct {
	basePath string // root directory files are written under
	baseURL  string // base URL prepended to returned file URLs
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// SaveFile stores an uploaded file under a collision-free name and returns the
// accessible URL plus the storage key used for later deletion.
func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader) (fileURL, fileKey string, err error) {
	if fileHeader == nil {
		return "", "", fmt.Errorf("no file provided")
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	ext := filepath.Ext(fileHeader.Filename)
	fileKey = uuid.New().String() + ext

	dstPath := filepath.Join(ls.basePath, fileKey)
	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", "", fmt.Errorf("failed to save file content: %w", err)
	}

	if ls.baseURL != "" {
		fileURL = strings.TrimRight(ls.baseURL, "/") + "/" + fileKey
	} else {
		fileURL = filepath.Join("uploads", fileKey)
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", fileKey).Msg("File saved successfully")
	return fileURL, fileKey, nil
}

// DeleteFile removes a stored file by its key. Deleting a missing file is not
// an error.
func (ls *LocalStorage) DeleteFile(fileKey string) error {
	if fileKey == "" {
		return nil
	}

	filename := filepath.Base(fileKey)
	if filename == "" || filename == "." || filename == "/" {
		return fmt.Errorf("invalid file key: %s", fileKey)
	}

	physicalPath := filepath.Join(ls.basePath, filename)

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}
