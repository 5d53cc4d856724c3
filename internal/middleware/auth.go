package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/saurab2057/Filetool/internal/ctxkeys"
	"github.com/saurab2057/Filetool/internal/service"
)

// Authenticate requires a bearer access credential and adds the caller's identity to
// the request context. The identity reflects the account as stored now, not as
// it was when the credential was issued.
func Authenticate(sessions *service.SessionService) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Access token is missing.")
				return
			}

			identity, err := sessions.VerifyAccess(r.Context(), token)
			if err != nil {
				var pub *service.PublicError
				switch {
				case errors.As(err, &pub) && errors.Is(err, service.ErrForbidden):
					writeError(w, http.StatusForbidden, pub.Message)
				case errors.Is(err, service.ErrInvalidOrExpired):
					writeError(w, http.StatusForbidden, "Access token is invalid or expired.")
				case errors.Is(err, service.ErrUnauthenticated):
					writeError(w, http.StatusUnauthorized, "User not found.")
				default:
					slog.Error("failed to verify access token", "error", err, "request_id", ctxkeys.RequestID(r.Context()))
					writeError(w, http.StatusInternalServerError, "Internal server error")
				}
				return
			}

			next(w, r.WithContext(ctxkeys.WithIdentity(r.Context(), identity)))
		}
	}
}

// RequireRole must run after Authenticate.
func RequireRole(sessions *service.SessionService, role string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity := ctxkeys.Identity(r.Context())
			if err := sessions.RequireRole(identity, role); err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					writeError(w, http.StatusUnauthorized, "Access token is missing.")
					return
				}
				slog.Warn("role check failed", "user_id", identity.ID, "role", identity.Role, "required", role)
				writeError(w, http.StatusForbidden, "Forbidden: Requires admin privileges.")
				return
			}
			next(w, r)
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
