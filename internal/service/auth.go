package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saurab2057/Filetool/internal/metrics"
	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/repository"
	"github.com/saurab2057/Filetool/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// RefreshCookieName is the httpOnly cookie carrying the refresh credential.
const RefreshCookieName = "jwt_refresh"

const (
	msgEmailInvalid       = "Please enter a valid email address."
	msgEmailTaken         = "A user with this e-mail already exists."
	msgPasswordWeak       = "Password must be at least 8 characters long and contain a number, an uppercase and a lowercase letter."
	msgPasswordMismatch   = "Password confirmation does not match the password."
	msgNameRequired       = "Name cannot be empty."
	msgPasswordRequired   = "Password field cannot be empty."
	msgNoLocalCredentials = "Invalid credentials or please use your social login provider."
	msgInvalidCredentials = "Invalid credentials."
	msgGoogleTokenMissing = "Google access token missing."
	msgGoogleFailed       = "Google authentication failed."
	msgResetTokenRequired = "A reset token is required."
	msgResetLinkInvalid   = "Your reset link is invalid or has expired."
)

type SignupInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Name            string `json:"name"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService struct {
	accounts     repository.AccountRepository
	sessions     *SessionService
	email        EmailSender
	federated    FederatedVerifier
	metadata     *MetadataService
	metrics      *metrics.Metrics
	frontendURL  string
	isProduction bool
	refreshTTL   time.Duration
}

type AuthConfig struct {
	FrontendURL  string
	IsProduction bool
	RefreshTTL   time.Duration
}

func NewAuthService(
	accounts repository.AccountRepository,
	sessions *SessionService,
	email EmailSender,
	federated FederatedVerifier,
	metadata *MetadataService,
	m *metrics.Metrics,
	cfg AuthConfig,
) *AuthService {
	return &AuthService{
		accounts:     accounts,
		sessions:     sessions,
		email:        email,
		federated:    federated,
		metadata:     metadata,
		metrics:      m,
		frontendURL:  strings.TrimSuffix(cfg.FrontendURL, "/"),
		isProduction: cfg.IsProduction,
		refreshTTL:   cfg.RefreshTTL,
	}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*model.Identity, error) {
	email := validation.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	verr := &ValidationError{}
	if validation.ValidateEmail(email) != nil {
		verr.Add("email", msgEmailInvalid)
	} else if _, err := s.accounts.ByEmail(ctx, email); err == nil {
		verr.Add("email", msgEmailTaken)
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if validation.ValidatePassword(in.Password) != nil {
		verr.Add("password", msgPasswordWeak)
	}
	if in.ConfirmPassword != in.Password {
		verr.Add("confirmPassword", msgPasswordMismatch)
	}
	if name == "" || validation.ValidateName(name) != nil {
		verr.Add("name", msgNameRequired)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: &hash,
		AuthProvider: model.ProviderLocal,
		Role:         model.RoleUser,
		Status:       model.StatusActive,
		Name:         name,
		CreatedAt:    time.Now().UTC(),
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, invalidField("email", msgEmailTaken)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("account created", "user_id", account.ID, "provider", account.AuthProvider)

	if err := s.email.SendWelcomeEmail(ctx, account.Email, account.Name); err != nil {
		slog.Error("failed to send welcome email", "error", err, "user_id", account.ID)
	}

	return account.Identity(), nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput, client ClientInfo) (*Session, error) {
	email := validation.NormalizeEmail(in.Email)

	verr := &ValidationError{}
	if validation.ValidateEmail(email) != nil {
		verr.Add("email", "Please enter a valid email.")
	}
	if in.Password == "" {
		verr.Add("password", msgPasswordRequired)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	account, err := s.accounts.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			s.metrics.AuthEvent("login", "unknown_account")
			return nil, publicError(ErrUnauthenticated, msgNoLocalCredentials)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !account.HasPassword() {
		s.metrics.AuthEvent("login", "no_password")
		return nil, publicError(ErrUnauthenticated, msgNoLocalCredentials)
	}

	if ComparePassword(in.Password, *account.PasswordHash) != nil {
		s.metrics.AuthEvent("login", "bad_password")
		return nil, publicError(ErrUnauthenticated, msgInvalidCredentials)
	}

	if account.IsBanned() {
		s.metrics.AuthEvent("login", "banned")
		return nil, publicError(ErrForbidden, "Your account has been banned.")
	}

	s.metadata.Record(ctx, account.ID, client)
	s.metrics.AuthEvent("login", "ok")

	return s.sessions.IssueSession(ctx, account)
}

// LoginWithGoogle signs in with a Google access token obtained by the frontend.
// The first login creates a federated account; later logins refresh only the avatar.
func (s *AuthService) LoginWithGoogle(ctx context.Context, accessToken string, client ClientInfo) (*Session, error) {
	if accessToken == "" {
		return nil, invalidField("access_token", msgGoogleTokenMissing)
	}

	profile, err := s.federated.Profile(ctx, accessToken)
	if err != nil {
		slog.Warn("google authentication failed", "error", err)
		s.metrics.AuthEvent("google", "rejected")
		return nil, publicError(ErrUnauthenticated, msgGoogleFailed)
	}

	candidate := &model.Account{
		ID:           uuid.NewString(),
		Email:        validation.NormalizeEmail(profile.Email),
		AuthProvider: model.ProviderFederated,
		Role:         model.RoleUser,
		Status:       model.StatusActive,
		Name:         strings.TrimSpace(profile.Name),
		CreatedAt:    time.Now().UTC(),
	}
	if profile.Picture != "" {
		candidate.AvatarURL = &profile.Picture
	}

	account, err := s.accounts.UpsertFederated(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert federated account: %w", err)
	}

	if account.IsBanned() {
		s.metrics.AuthEvent("google", "banned")
		return nil, publicError(ErrForbidden, "Your account has been banned.")
	}

	s.metadata.Record(ctx, account.ID, client)
	s.metrics.AuthEvent("google", "ok")

	return s.sessions.IssueSession(ctx, account)
}

// ForgotPassword mails a reset link to local accounts. Unknown and federated
// addresses are silently ignored so callers cannot probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	if validation.ValidateEmail(email) != nil {
		return invalidField("email", msgEmailInvalid)
	}

	account, err := s.accounts.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get account: %w", err)
	}
	if !account.HasPassword() {
		slog.Info("password reset requested for federated account", "user_id", account.ID)
		return nil
	}

	token, err := s.sessions.IssueResetToken(account)
	if err != nil {
		return err
	}

	resetURL := s.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
	if err := s.email.SendPasswordResetEmail(ctx, account.Email, account.Name, resetURL); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword sets a new password from a reset link. The current session is
// revoked and the link cannot be reused.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	verr := &ValidationError{}
	if token == "" {
		verr.Add("token", msgResetTokenRequired)
	}
	if validation.ValidatePassword(newPassword) != nil {
		verr.Add("newPassword", "New password must be at least 8 characters long and strong.")
	}
	if err := verr.Err(); err != nil {
		return err
	}

	account, err := s.sessions.VerifyResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpired) {
			return publicError(ErrUnauthenticated, msgResetLinkInvalid)
		}
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, hash); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return publicError(ErrUnauthenticated, msgResetLinkInvalid)
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password reset", "user_id", account.ID)
	return nil
}

func (s *AuthService) SetRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		MaxAge:   int(s.refreshTTL.Seconds()),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
