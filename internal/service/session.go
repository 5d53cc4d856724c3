package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/saurab2057/Filetool/internal/metrics"
	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/repository"
)

const (
	audienceAccess        = "access"
	audienceRefresh       = "refresh"
	audiencePasswordReset = "password-reset"
)

// Session is what a successful login or refresh hands to the client.
// RefreshToken is empty after a refresh that did not rotate.
type Session struct {
	AccessToken  string
	RefreshToken string
	Identity     *model.Identity
}

type SessionConfig struct {
	AccessSecret  string
	RefreshSecret string
	ResetSecret   string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
	Rotate        bool
}

// UserInfo is the identity snapshot embedded in access credentials.
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type accessClaims struct {
	UserInfo UserInfo `json:"userInfo"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type resetClaims struct {
	Fingerprint string `json:"pwf"`
	jwt.RegisteredClaims
}

// SessionService issues, verifies, refreshes and revokes the access/refresh
// credential pair. The refresh value stored on the account is the revocation
// checkpoint: a refresh credential is only accepted while it equals it.
type SessionService struct {
	accounts repository.AccountRepository
	cfg      SessionConfig
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewSessionService(accounts repository.AccountRepository, cfg SessionConfig, m *metrics.Metrics) *SessionService {
	return &SessionService{
		accounts: accounts,
		cfg:      cfg,
		metrics:  m,
		now:      time.Now,
	}
}

// IssueSession signs a new pair and stores the refresh value on the account,
// replacing any previous session.
func (s *SessionService) IssueSession(ctx context.Context, account *model.Account) (*Session, error) {
	access, err := s.signAccess(account)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signRefresh(account.ID)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.SetRefreshToken(ctx, account.ID, refresh); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.metrics.AuthEvent("issue", "ok")
	return &Session{AccessToken: access, RefreshToken: refresh, Identity: account.Identity()}, nil
}

// VerifyAccess checks the access credential and loads the current account state,
// so role and status changes apply on the next request.
func (s *SessionService) VerifyAccess(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims := &accessClaims{}
	if err := s.parse(token, s.cfg.AccessSecret, audienceAccess, claims); err != nil {
		return nil, err
	}

	account, err := s.accounts.ByID(ctx, claims.UserInfo.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if account.IsBanned() {
		return nil, publicError(ErrForbidden, "Your account has been banned.")
	}

	return account.Identity(), nil
}

// RefreshSession exchanges a live refresh credential for a new access credential.
// With rotation enabled the refresh credential is replaced atomically as well.
func (s *SessionService) RefreshSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims := &refreshClaims{}
	if err := s.parse(token, s.cfg.RefreshSecret, audienceRefresh, claims); err != nil {
		s.metrics.AuthEvent("refresh", "invalid")
		return nil, err
	}

	account, err := s.accounts.ByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			s.metrics.AuthEvent("refresh", "revoked")
			return nil, ErrRevoked
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if account.RefreshToken == nil || *account.RefreshToken != token {
		s.metrics.AuthEvent("refresh", "revoked")
		return nil, ErrRevoked
	}
	if account.IsBanned() {
		return nil, publicError(ErrForbidden, "Your account has been banned.")
	}

	access, err := s.signAccess(account)
	if err != nil {
		return nil, err
	}
	session := &Session{AccessToken: access, Identity: account.Identity()}

	if s.cfg.Rotate {
		next, err := s.signRefresh(account.ID)
		if err != nil {
			return nil, err
		}
		if err := s.accounts.RotateRefreshToken(ctx, account.ID, token, next); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenMismatch) {
				s.metrics.AuthEvent("refresh", "revoked")
				return nil, ErrRevoked
			}
			return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
		}
		session.RefreshToken = next
	}

	s.metrics.AuthEvent("refresh", "ok")
	return session, nil
}

// RevokeSession clears the stored refresh value if token verifies and is still the
// stored one. Invalid or stale credentials are ignored.
func (s *SessionService) RevokeSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims := &refreshClaims{}
	if err := s.parse(token, s.cfg.RefreshSecret, audienceRefresh, claims); err != nil {
		slog.Debug("logout with unverifiable refresh token", "error", err)
		return nil
	}

	if err := s.accounts.ClearRefreshToken(ctx, claims.UserID, token); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	s.metrics.AuthEvent("revoke", "ok")
	return nil
}

func (s *SessionService) RequireRole(identity *model.Identity, role string) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if identity.Role != role {
		return ErrForbidden
	}
	return nil
}

// IssueResetToken signs a password-reset credential bound to the account's
// current password hash, so it stops working once the password changes.
func (s *SessionService) IssueResetToken(account *model.Account) (string, error) {
	now := s.now()
	claims := resetClaims{
		Fingerprint: passwordFingerprint(account),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			Audience:  jwt.ClaimStrings{audiencePasswordReset},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.ResetTTL)),
		},
	}
	return s.sign(claims, s.cfg.ResetSecret)
}

// VerifyResetToken returns the account a reset credential was issued for.
func (s *SessionService) VerifyResetToken(ctx context.Context, token string) (*model.Account, error) {
	claims := &resetClaims{}
	if err := s.parse(token, s.cfg.ResetSecret, audiencePasswordReset, claims); err != nil {
		return nil, err
	}

	account, err := s.accounts.ByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrInvalidOrExpired
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if passwordFingerprint(account) != claims.Fingerprint {
		return nil, ErrInvalidOrExpired
	}
	return account, nil
}

func (s *SessionService) signAccess(account *model.Account) (string, error) {
	now := s.now()
	claims := accessClaims{
		UserInfo: UserInfo{
			ID:    account.ID,
			Name:  account.Name,
			Email: account.Email,
			Role:  account.Role,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			Audience:  jwt.ClaimStrings{audienceAccess},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}
	return s.sign(claims, s.cfg.AccessSecret)
}

// signRefresh carries a random jti so two refresh values issued within the same
// second still differ.
func (s *SessionService) signRefresh(accountID string) (string, error) {
	now := s.now()
	claims := refreshClaims{
		UserID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   accountID,
			Audience:  jwt.ClaimStrings{audienceRefresh},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTTL)),
		},
	}
	return s.sign(claims, s.cfg.RefreshSecret)
}

func (s *SessionService) sign(claims jwt.Claims, secret string) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *SessionService) parse(token, secret, audience string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return ErrInvalidOrExpired
	}
	return nil
}

func passwordFingerprint(account *model.Account) string {
	if account.PasswordHash == nil {
		return ""
	}
	sum := sha256.Sum256([]byte(*account.PasswordHash))
	return hex.EncodeToString(sum[:8])
}
