package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/saurab2057/Filetool/internal/model"
)

type JobRepository interface {
	// Create records a finished conversion in the owner's history.
	Create(ctx context.Context, job *model.ConversionJob) error
	ByUser(ctx context.Context, userID string) ([]*model.ConversionJob, error)
	List(ctx context.Context) ([]*model.JobWithOwner, error)
}

type jobRepository struct {
	db *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *model.ConversionJob) error {
	query := `INSERT INTO conversion_jobs (id, user_id, filename, format, size_in_bytes, processed_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		job.ID,
		job.UserID,
		job.Filename,
		job.Format,
		job.SizeInBytes,
		job.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversion job: %w", err)
	}

	return nil
}

func (r *jobRepository) ByUser(ctx context.Context, userID string) ([]*model.ConversionJob, error) {
	jobs := []*model.ConversionJob{}
	query := `SELECT * FROM conversion_jobs WHERE user_id = $1 ORDER BY processed_at DESC`

	err := r.db.SelectContext(ctx, &jobs, query, userID)
	if err != nil {
		return nil, err
	}

	return jobs, nil
}

func (r *jobRepository) List(ctx context.Context) ([]*model.JobWithOwner, error) {
	jobs := []*model.JobWithOwner{}
	query := `
		SELECT j.id, j.user_id, j.filename, j.format, j.size_in_bytes, j.processed_at,
		       a.email AS owner_email, a.name AS owner_name
		FROM conversion_jobs j
		JOIN accounts a ON a.id = j.user_id
		ORDER BY j.processed_at DESC
	`

	err := r.db.SelectContext(ctx, &jobs, query)
	if err != nil {
		return nil, err
	}

	return jobs, nil
}
