package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/service"
	"github.com/saurab2057/Filetool/internal/validation"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "validation",
			err:     &service.ValidationError{Fields: []service.FieldError{{Field: "email", Msg: "Please enter a valid email."}}},
			status:  http.StatusBadRequest,
			message: "Please enter a valid email.",
		},
		{
			name:    "public unauthenticated",
			err:     &service.PublicError{Kind: service.ErrUnauthenticated, Message: "Invalid credentials."},
			status:  http.StatusUnauthorized,
			message: "Invalid credentials.",
		},
		{
			name:    "wrapped forbidden",
			err:     fmt.Errorf("check: %w", service.ErrForbidden),
			status:  http.StatusForbidden,
			message: "Forbidden.",
		},
		{
			name:    "expired",
			err:     service.ErrInvalidOrExpired,
			status:  http.StatusForbidden,
			message: "Token is invalid or expired.",
		},
		{
			name:    "not found",
			err:     service.ErrNotFound,
			status:  http.StatusNotFound,
			message: "Not found.",
		},
		{
			name:    "internal",
			err:     errors.New("connection refused"),
			status:  http.StatusInternalServerError,
			message: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			require.Equal(t, tt.status, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			require.Equal(t, tt.message, body["message"])
			require.NotContains(t, body["message"], "connection refused")
		})
	}
}

func TestWriteError_ListsAllFields(t *testing.T) {
	verr := &service.ValidationError{}
	verr.Add("email", "Please enter a valid email.")
	verr.Add("password", "Password is required.")

	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil), verr)

	var body validationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Errors, 2)
	require.Equal(t, "password", body.Errors[1].Field)
}

func TestDecodeJSON(t *testing.T) {
	var in struct {
		Email string `json:"email"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.com"}`))
	require.True(t, decodeJSON(rec, req, &in))
	require.Equal(t, "a@b.com", in.Email)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	require.False(t, decodeJSON(rec, req, &in))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// An empty body decodes to the zero value.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	require.True(t, decodeJSON(rec, req, &in))
}

func TestParseSettings(t *testing.T) {
	settings, err := parseSettings("")
	require.NoError(t, err)
	require.Empty(t, settings)

	settings, err = parseSettings(`[
		{"originalName": "clip.mov", "settings": {"removeAudio": true, "video_quality": "high", "trimStart": 5}},
		{"originalName": "song.wav", "settings": {"audioRateControl": "cbr", "bitrate": "192"}}
	]`)
	require.NoError(t, err)
	require.Len(t, settings, 2)
	require.True(t, settings["clip.mov"].RemoveAudio)
	require.Equal(t, "high", settings["clip.mov"].VideoQuality)
	require.Equal(t, model.FlexString("5"), settings["clip.mov"].TrimStart)
	require.Equal(t, "cbr", settings["song.wav"].AudioRateControl)

	_, err = parseSettings(`{"originalName": "clip.mov"}`)
	require.Error(t, err)
}

func TestBatchMessage(t *testing.T) {
	require.Equal(t, "No files were uploaded.", batchMessage(validation.ErrNoFiles, 5, 100<<20))
	require.Equal(t, "You can upload at most 5 files at once.",
		batchMessage(fmt.Errorf("%w: at most 5 files per batch", validation.ErrTooManyFiles), 5, 100<<20))
	require.Equal(t, "Each file must be at most 100 MB.",
		batchMessage(fmt.Errorf("%w: big.mov", validation.ErrFileTooLarge), 5, 100<<20))
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
