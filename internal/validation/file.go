package validation

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrNoFiles       = errors.New("no files were uploaded")
	ErrTooManyFiles  = errors.New("too many files")
	ErrFileTooLarge  = errors.New("file too large")
	ErrInvalidFormat = errors.New("invalid file type")
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// AvatarMaxSize is the largest accepted profile picture.
const AvatarMaxSize = 5 << 20

// AvatarConstraints applies to profile pictures.
var AvatarConstraints = FileConstraints{
	AllowedMimeTypes: map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	},
	AllowedExtensions: map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".gif":  true,
	},
	MaxSize: AvatarMaxSize,
}

// ValidateFile checks size, sniffed content type and extension of an upload.
func ValidateFile(header *multipart.FileHeader, constraints FileConstraints) error {
	if header.Size > constraints.MaxSize {
		return fmt.Errorf("%w: maximum size is %d MB", ErrFileTooLarge, constraints.MaxSize/(1<<20))
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// http.DetectContentType reads at most 512 bytes
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}

	detectedType := http.DetectContentType(buffer[:n])
	if !constraints.AllowedMimeTypes[detectedType] {
		return fmt.Errorf("%w (detected: %s)", ErrInvalidFormat, detectedType)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !constraints.AllowedExtensions[ext] {
		return fmt.Errorf("%w: extension %s", ErrInvalidFormat, ext)
	}

	return nil
}

// ValidateBatch enforces the count and per-file size limits of a conversion batch.
// Content is not sniffed: the vendor decides what it can read.
func ValidateBatch(headers []*multipart.FileHeader, maxFiles int, maxSize int64) error {
	if len(headers) == 0 {
		return ErrNoFiles
	}
	if len(headers) > maxFiles {
		return fmt.Errorf("%w: at most %d files per batch", ErrTooManyFiles, maxFiles)
	}
	for _, h := range headers {
		if h.Size > maxSize {
			return fmt.Errorf("%w: %s exceeds %d MB", ErrFileTooLarge, h.Filename, maxSize/(1<<20))
		}
	}
	return nil
}
