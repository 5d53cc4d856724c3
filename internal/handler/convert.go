package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/saurab2057/Filetool/internal/ctxkeys"
	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/service"
	"github.com/saurab2057/Filetool/internal/validation"
)

// multipartMemory is how much of a batch is buffered in memory before spilling to disk.
const multipartMemory = 32 << 20

type convertHandler struct {
	conversionService *service.ConversionService
	maxFiles          int
	maxFileSize       int64
}

func NewConvertHandler(conversionService *service.ConversionService, maxFiles int, maxFileSize int64) *convertHandler {
	return &convertHandler{
		conversionService: conversionService,
		maxFiles:          maxFiles,
		maxFileSize:       maxFileSize,
	}
}

// Batch converts every uploaded file to toFormat and answers with one outcome per
// file, in upload order.
func (h *convertHandler) Batch(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, int64(h.maxFiles)*h.maxFileSize+maxJSONBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "Upload is too large.")
			return
		}
		writeMessage(w, http.StatusBadRequest, "No files were uploaded.")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if err := validation.ValidateBatch(headers, h.maxFiles, h.maxFileSize); err != nil {
		writeMessage(w, http.StatusBadRequest, batchMessage(err, h.maxFiles, h.maxFileSize))
		return
	}

	target := strings.ToLower(strings.TrimSpace(r.FormValue("toFormat")))
	if target == "" {
		writeMessage(w, http.StatusBadRequest, "Target output format was not specified.")
		return
	}

	settings, err := parseSettings(r.FormValue("settings"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Settings must be a JSON array of {originalName, settings}.")
		return
	}

	requests := make([]model.ConversionRequest, 0, len(headers))
	for _, fh := range headers {
		content, err := readUpload(fh)
		if err != nil {
			writeError(w, r, err)
			return
		}
		requests = append(requests, model.ConversionRequest{
			OriginalName: fh.Filename,
			SourceFormat: validation.SourceFormat(fh.Filename),
			TargetFormat: target,
			Settings:     settings[fh.Filename],
			Content:      content,
		})
	}

	outcomes := h.conversionService.ConvertBatch(r.Context(), identity, requests)
	writeJSON(w, http.StatusOK, outcomes)
}

func (h *convertHandler) History(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	jobs, err := h.conversionService.History(r.Context(), identity.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// parseSettings turns the settings form field into a lookup by original file name.
func parseSettings(raw string) (map[string]model.FileSettings, error) {
	settings := make(map[string]model.FileSettings)
	if strings.TrimSpace(raw) == "" {
		return settings, nil
	}

	var entries []model.FileSettingsEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		settings[e.OriginalName] = e.Settings
	}
	return settings, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return content, nil
}

func batchMessage(err error, maxFiles int, maxFileSize int64) string {
	switch {
	case errors.Is(err, validation.ErrNoFiles):
		return "No files were uploaded."
	case errors.Is(err, validation.ErrTooManyFiles):
		return fmt.Sprintf("You can upload at most %d files at once.", maxFiles)
	case errors.Is(err, validation.ErrFileTooLarge):
		return fmt.Sprintf("Each file must be at most %d MB.", maxFileSize>>20)
	default:
		return "Invalid upload."
	}
}
