package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/saurab2057/Filetool/internal/model"
)

type SettingsRepository interface {
	Get(ctx context.Context) (*model.SystemSettings, error)
	Upsert(ctx context.Context, settings *model.SystemSettings) error
}

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// The singleton document is stored as JSON so new settings need no migration.
type settingsRow struct {
	Key       string    `db:"key"`
	Data      string    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *settingsRepository) Get(ctx context.Context) (*model.SystemSettings, error) {
	row := settingsRow{}
	query := `SELECT key, data, updated_at FROM system_settings WHERE key = $1`

	err := r.db.GetContext(ctx, &row, query, model.SettingsKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}

	settings := &model.SystemSettings{}
	err = json.Unmarshal([]byte(row.Data), settings)
	if err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	return settings, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *model.SystemSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	query := `
		INSERT INTO system_settings (key, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET data = excluded.data, updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, model.SettingsKey, string(data), settings.UpdatedAt)
	return err
}
