package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/models"
)

var ErrInvalidExtension = errors.New("only .pdf files are accepted")

// StorageService stages uploaded files per session until they are submitted or discarded.
type StorageService interface {
	SaveFile(sessionID string, file *multipart.FileHeader) (models.FileHandle, error)
	StagedFiles(sessionID string) ([]string, error)
	DeleteFile(path string) error
	DeleteSession(sessionID string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
	inspector   PDFInspector
}

func NewStorageService(uploadPath string, maxFileSize int64, inspector PDFInspector) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
		inspector:   inspector,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) SaveFile(sessionID string, file *multipart.FileHeader) (models.FileHandle, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return models.FileHandle{}, fmt.Errorf("%w: %s", ErrInvalidExtension, file.Filename)
	}

	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return models.FileHandle{}, fmt.Errorf("file %s too large. Max size: %d bytes", file.Filename, s.maxFileSize)
	}

	dir := s.sessionDir(sessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return models.FileHandle{}, fmt.Errorf("failed to create session directory: %w", err)
	}

	filePath := filepath.Join(dir, uuid.New().String()+ext)

	src, err := file.Open()
	if err != nil {
		return models.FileHandle{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return models.FileHandle{}, fmt.Errorf("failed to create destination file: %w", err)
	}

	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filePath)
		return models.FileHandle{}, fmt.Errorf("failed to save file: %w", err)
	}

	handle := models.FileHandle{
		Name: filepath.Base(file.Filename),
		Size: written,
		Path: filePath,
	}

	if s.inspector != nil {
		if info, err := s.inspector.Inspect(filePath); err == nil {
			handle.PageCount = info.PageCount
		}
	}

	return handle, nil
}

func (s *storageService) StagedFiles(sessionID string) ([]string, error) {
	entries, err := os.ReadDir(s.sessionDir(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list staged files: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(s.sessionDir(sessionID), e.Name()))
	}
	return paths, nil
}

func (s *storageService) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *storageService) DeleteSession(sessionID string) error {
	if err := os.RemoveAll(s.sessionDir(sessionID)); err != nil {
		return fmt.Errorf("failed to delete session files: %w", err)
	}
	return nil
}

func (s *storageService) sessionDir(sessionID string) string {
	return filepath.Join(s.uploadPath, filepath.Base(sessionID))
}
