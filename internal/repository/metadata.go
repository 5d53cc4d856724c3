package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/saurab2057/Filetool/internal/model"
)

type MetadataRepository interface {
	// Upsert keeps only the latest login metadata per account.
	Upsert(ctx context.Context, metadata *model.LoginMetadata) error
	ByUser(ctx context.Context, userID string) (*model.LoginMetadata, error)
	All(ctx context.Context) ([]*model.LoginMetadata, error)
}

type metadataRepository struct {
	db *sqlx.DB
}

func NewMetadataRepository(db *sqlx.DB) MetadataRepository {
	return &metadataRepository{db: db}
}

type metadataRow struct {
	UserID        string    `db:"user_id"`
	IP            string    `db:"ip"`
	UserAgent     string    `db:"user_agent"`
	DeviceType    string    `db:"device_type"`
	DeviceBrowser string    `db:"device_browser"`
	DeviceOS      string    `db:"device_os"`
	CreatedAt     time.Time `db:"created_at"`
}

func (row metadataRow) model() *model.LoginMetadata {
	return &model.LoginMetadata{
		UserID:    row.UserID,
		IP:        row.IP,
		UserAgent: row.UserAgent,
		Device: model.Device{
			Type:    row.DeviceType,
			Browser: row.DeviceBrowser,
			OS:      row.DeviceOS,
		},
		CreatedAt: row.CreatedAt,
	}
}

func (r *metadataRepository) Upsert(ctx context.Context, m *model.LoginMetadata) error {
	query := `
		INSERT INTO login_metadata (user_id, ip, user_agent, device_type, device_browser, device_os, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET ip = excluded.ip,
		    user_agent = excluded.user_agent,
		    device_type = excluded.device_type,
		    device_browser = excluded.device_browser,
		    device_os = excluded.device_os,
		    created_at = excluded.created_at
	`

	_, err := r.db.ExecContext(ctx, query,
		m.UserID,
		m.IP,
		m.UserAgent,
		m.Device.Type,
		m.Device.Browser,
		m.Device.OS,
		m.CreatedAt,
	)
	return err
}

func (r *metadataRepository) ByUser(ctx context.Context, userID string) (*model.LoginMetadata, error) {
	row := metadataRow{}
	query := `SELECT * FROM login_metadata WHERE user_id = $1`

	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMetadataNotFound
	}
	if err != nil {
		return nil, err
	}

	return row.model(), nil
}

func (r *metadataRepository) All(ctx context.Context) ([]*model.LoginMetadata, error) {
	var rows []metadataRow
	query := `SELECT * FROM login_metadata`

	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, err
	}

	result := make([]*model.LoginMetadata, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.model())
	}
	return result, nil
}
