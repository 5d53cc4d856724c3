package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/saurab2057/Filetool/internal/middleware"
	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/service"
)

type authHandler struct {
	authService    *service.AuthService
	sessionService *service.SessionService
	trustProxy     bool
}

func NewAuthHandler(authService *service.AuthService, sessionService *service.SessionService, trustProxy bool) *authHandler {
	return &authHandler{
		authService:    authService,
		sessionService: sessionService,
		trustProxy:     trustProxy,
	}
}

type sessionResponse struct {
	AccessToken string          `json:"accessToken"`
	User        *model.Identity `json:"user"`
}

type googleLoginRequest struct {
	AccessToken string `json:"access_token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *authHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if !decodeJSON(w, r, &in) {
		return
	}

	if _, err := h.authService.Signup(r.Context(), in); err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusCreated, "User registered successfully. Please login.")
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}

	session, err := h.authService.Login(r.Context(), in, h.clientInfo(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeSession(w, session)
}

func (h *authHandler) Google(w http.ResponseWriter, r *http.Request) {
	var in googleLoginRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	session, err := h.authService.LoginWithGoogle(r.Context(), in.AccessToken, h.clientInfo(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeSession(w, session)
}

func (h *authHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(service.RefreshCookieName)
	if err != nil || cookie.Value == "" {
		writeMessage(w, http.StatusUnauthorized, "No refresh token provided.")
		return
	}

	session, err := h.sessionService.RefreshSession(r.Context(), cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrExpired):
			writeMessage(w, http.StatusForbidden, "Refresh token is invalid or expired.")
		case errors.Is(err, service.ErrRevoked):
			h.authService.ClearRefreshCookie(w)
			writeMessage(w, http.StatusForbidden, "Invalid refresh token.")
		default:
			writeError(w, r, err)
		}
		return
	}

	h.writeSession(w, session)
}

// Logout always answers 204, whatever the state of the presented credential.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(service.RefreshCookieName); err == nil {
		if err := h.sessionService.RevokeSession(r.Context(), cookie.Value); err != nil {
			slog.Error("failed to revoke session", "error", err)
		}
	}

	h.authService.ClearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *authHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in forgotPasswordRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), in.Email); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeError(w, r, err)
			return
		}
		// Don't reveal delivery problems to the caller
		slog.Error("failed to process password reset request", "error", err)
	}

	writeMessage(w, http.StatusOK, "If this email is registered, a reset link will be sent.")
}

func (h *authHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in resetPasswordRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), in.Token, in.NewPassword); err != nil {
		var pub *service.PublicError
		if errors.As(err, &pub) {
			writeMessage(w, http.StatusBadRequest, pub.Message)
			return
		}
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password has been reset successfully.")
}

// writeSession sets the refresh cookie when the session carries a new refresh value.
func (h *authHandler) writeSession(w http.ResponseWriter, session *service.Session) {
	if session.RefreshToken != "" {
		h.authService.SetRefreshCookie(w, session.RefreshToken)
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		AccessToken: session.AccessToken,
		User:        session.Identity,
	})
}

func (h *authHandler) clientInfo(r *http.Request) service.ClientInfo {
	return service.ClientInfo{
		IP:        middleware.ClientIP(r, h.trustProxy),
		UserAgent: r.UserAgent(),
	}
}
