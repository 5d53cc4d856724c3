package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/saurab2057/Filetool/internal/ctxkeys"
	"github.com/saurab2057/Filetool/internal/service"
)

const maxJSONBody = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string               `json:"message"`
	Errors  []service.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeError maps service errors to HTTP responses. Unknown errors are logged and
// reported as a plain 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		resp := validationResponse{Message: "Invalid request.", Errors: verr.Fields}
		if len(verr.Fields) > 0 {
			resp.Message = verr.Fields[0].Msg
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", ctxkeys.RequestID(r.Context()),
		)
	}

	var pub *service.PublicError
	if errors.As(err, &pub) {
		message = pub.Message
	}
	writeMessage(w, status, message)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "Authentication required."
	case errors.Is(err, service.ErrInvalidOrExpired):
		return http.StatusForbidden, "Token is invalid or expired."
	case errors.Is(err, service.ErrRevoked):
		return http.StatusForbidden, "Invalid refresh token."
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Forbidden."
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Not found."
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// decodeJSON reads a JSON request body into v. Failures are reported as a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Request body must be valid JSON.")
		return false
	}
	return true
}
