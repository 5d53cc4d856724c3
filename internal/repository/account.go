package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/saurab2057/Filetool/internal/model"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	ByID(ctx context.Context, id string) (*model.Account, error)
	ByEmail(ctx context.Context, email string) (*model.Account, error)
	List(ctx context.Context) ([]*model.Account, error)
	// UpsertFederated inserts a federated account or refreshes the avatar of the
	// account already registered under that email. The stored name is never
	// replaced. The stored account is returned.
	UpsertFederated(ctx context.Context, account *model.Account) (*model.Account, error)
	UpdateProfile(ctx context.Context, id, name string, avatarURL *string) error
	// UpdatePassword replaces the hash and drops the stored refresh token.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// UpdateAccess sets status and role in one write. Empty values keep the stored
	// ones. Banning also drops the stored refresh token.
	UpdateAccess(ctx context.Context, id, status, role string) (*model.Account, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	RotateRefreshToken(ctx context.Context, id, current, next string) error
	// ClearRefreshToken removes the stored token only if it equals token.
	ClearRefreshToken(ctx context.Context, id, token string) error
}

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `INSERT INTO accounts (id, email, password_hash, auth_provider, role, status, refresh_token, name, avatar_url, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.AuthProvider,
		account.Role,
		account.Status,
		account.RefreshToken,
		account.Name,
		account.AvatarURL,
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

func (r *accountRepository) ByID(ctx context.Context, id string) (*model.Account, error) {
	account := &model.Account{}
	query := `SELECT * FROM accounts WHERE id = $1`

	err := r.db.GetContext(ctx, account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (r *accountRepository) ByEmail(ctx context.Context, email string) (*model.Account, error) {
	account := &model.Account{}
	query := `SELECT * FROM accounts WHERE email = $1`

	err := r.db.GetContext(ctx, account, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (r *accountRepository) List(ctx context.Context) ([]*model.Account, error) {
	var accounts []*model.Account
	query := `SELECT * FROM accounts ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &accounts, query)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

func (r *accountRepository) UpsertFederated(ctx context.Context, account *model.Account) (*model.Account, error) {
	stored := &model.Account{}
	query := `
		INSERT INTO accounts (id, email, auth_provider, role, status, name, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO UPDATE
		SET avatar_url = COALESCE(excluded.avatar_url, accounts.avatar_url)
		RETURNING *
	`

	err := r.db.GetContext(ctx, stored, query,
		account.ID,
		account.Email,
		model.ProviderFederated,
		account.Role,
		account.Status,
		account.Name,
		account.AvatarURL,
		account.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert federated account: %w", err)
	}

	return stored, nil
}

func (r *accountRepository) UpdateProfile(ctx context.Context, id, name string, avatarURL *string) error {
	query := `UPDATE accounts SET name = $1, avatar_url = COALESCE($2, avatar_url) WHERE id = $3`
	return r.execOne(ctx, ErrAccountNotFound, query, name, avatarURL, id)
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $1, refresh_token = NULL WHERE id = $2 AND auth_provider = 'local'`
	return r.execOne(ctx, ErrAccountNotFound, query, passwordHash, id)
}

func (r *accountRepository) UpdateAccess(ctx context.Context, id, status, role string) (*model.Account, error) {
	account := &model.Account{}
	query := `
		UPDATE accounts
		SET status = COALESCE(NULLIF($1, ''), status),
		    role = COALESCE(NULLIF($2, ''), role),
		    refresh_token = CASE WHEN $3 THEN NULL ELSE refresh_token END
		WHERE id = $4
		RETURNING *
	`

	err := r.db.GetContext(ctx, account, query, status, role, status == model.StatusBanned, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (r *accountRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	query := `UPDATE accounts SET refresh_token = $1 WHERE id = $2`
	return r.execOne(ctx, ErrAccountNotFound, query, token, id)
}

// RotateRefreshToken swaps the stored token in a single statement, so two
// concurrent refreshes with the same token cannot both succeed.
func (r *accountRepository) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	query := `UPDATE accounts SET refresh_token = $1 WHERE id = $2 AND refresh_token = $3`
	return r.execOne(ctx, ErrRefreshTokenMismatch, query, next, id, current)
}

func (r *accountRepository) ClearRefreshToken(ctx context.Context, id, token string) error {
	query := `UPDATE accounts SET refresh_token = NULL WHERE id = $1 AND refresh_token = $2`
	_, err := r.db.ExecContext(ctx, query, id, token)
	return err
}

// execOne runs an update and returns notFound when no row was affected.
func (r *accountRepository) execOne(ctx context.Context, notFound error, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return notFound
	}

	return nil
}
