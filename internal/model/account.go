package model

import (
	"errors"
	"time"
)

const (
	ProviderLocal     = "local"
	ProviderFederated = "federated"

	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusActive  = "active"
	StatusBanned  = "banned"
	StatusFlagged = "flagged"
)

var (
	ErrPasswordRequired  = errors.New("password hash is required for local accounts")
	ErrPasswordForbidden = errors.New("federated accounts cannot carry a password hash")
)

type Account struct {
	ID           string    `db:"id" bson:"_id"`
	Email        string    `db:"email" bson:"email"`
	PasswordHash *string   `db:"password_hash" bson:"password_hash,omitempty"` // Nil for federated accounts
	AuthProvider string    `db:"auth_provider" bson:"auth_provider"`
	Role         string    `db:"role" bson:"role"`
	Status       string    `db:"status" bson:"status"`
	RefreshToken *string   `db:"refresh_token" bson:"refresh_token,omitempty"`
	Name         string    `db:"name" bson:"name"`
	AvatarURL    *string   `db:"avatar_url" bson:"avatar_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" bson:"created_at"`
}

func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

func (a *Account) IsBanned() bool {
	return a.Status == StatusBanned
}

// Validate checks that the password hash is present exactly when the provider is local.
func (a *Account) Validate() error {
	if a.AuthProvider == ProviderLocal && !a.HasPassword() {
		return ErrPasswordRequired
	}
	if a.AuthProvider != ProviderLocal && a.HasPassword() {
		return ErrPasswordForbidden
	}
	return nil
}

// Identity returns the sanitized view of the account.
func (a *Account) Identity() *Identity {
	return &Identity{
		ID:                a.ID,
		Name:              a.Name,
		Email:             a.Email,
		Role:              a.Role,
		Status:            a.Status,
		AuthProvider:      a.AuthProvider,
		ProfilePictureURL: a.AvatarURL,
		CreatedAt:         a.CreatedAt,
	}
}

// Identity is an account without its password hash and refresh value.
type Identity struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	Status            string    `json:"status"`
	AuthProvider      string    `json:"authProvider"`
	ProfilePictureURL *string   `json:"profilePictureUrl"`
	CreatedAt         time.Time `json:"createdAt"`
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

func ValidStatus(status string) bool {
	return status == StatusActive || status == StatusBanned || status == StatusFlagged
}

// FederatedProfile is the subset of an identity provider's userinfo that is kept.
type FederatedProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}
