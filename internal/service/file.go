package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/saurab2057/Filetool/internal/storage"
	"github.com/saurab2057/Filetool/internal/validation"
)

type FileService struct {
	storage storage.Storage
}

func NewFileService(storage storage.Storage) *FileService {
	return &FileService{storage: storage}
}

// UploadAvatar validates and stores an avatar under public/avatars/ and returns
// its storage path and URL.
func (s *FileService) UploadAvatar(ctx context.Context, userID string, header *multipart.FileHeader) (string, string, error) {
	if err := validation.ValidateFile(header, validation.AvatarConstraints); err != nil {
		if errors.Is(err, validation.ErrFileTooLarge) {
			return "", "", invalidField("profilePicture", "Profile picture must be at most 5 MB.")
		}
		if errors.Is(err, validation.ErrInvalidFormat) {
			return "", "", invalidField("profilePicture", "Profile picture must be a JPEG, PNG, WebP or GIF image.")
		}
		return "", "", err
	}

	file, err := header.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	storagePath := path.Join("public", "avatars", uuid.NewString()+ext)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.Save(ctx, storagePath, file, header.Size, contentType); err != nil {
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	slog.Info("avatar stored", "user_id", userID, "path", storagePath)
	return storagePath, s.storage.URL(ctx, storagePath), nil
}

// Delete removes a stored object. Failures are logged only.
func (s *FileService) Delete(ctx context.Context, storagePath string) {
	if err := s.storage.Delete(ctx, storagePath); err != nil {
		slog.Error("failed to delete file from storage", "error", err, "path", storagePath)
	}
}
