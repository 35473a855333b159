package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"resume-builder/internal/domain"
)

// ExportJobsRepo persists export history. A repo built with a nil db is a
// no-op, which is what the memory and Redis backends use.
type ExportJobsRepo struct {
	db      *sql.DB
	dialect Dialect
}

func NewExportJobsRepo(db *sql.DB, dialect Dialect) *ExportJobsRepo {
	return &ExportJobsRepo{db: db, dialect: dialect}
}

func (r *ExportJobsRepo) Save(ctx context.Context, j *domain.ExportJob) error {
	if r == nil || r.db == nil {
		return nil
	}
	var finished any
	if !j.FinishedAt.IsZero() {
		finished = j.FinishedAt
	}
	_, err := r.db.ExecContext(ctx, r.dialect.rebind(`INSERT INTO export_jobs (id, user_id, template, status, file_name, location, pages, size_bytes, error, created_at, finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, location = EXCLUDED.location, pages = EXCLUDED.pages, size_bytes = EXCLUDED.size_bytes, error = EXCLUDED.error, finished_at = EXCLUDED.finished_at`),
		j.ID.String(), j.UserID, j.Template, j.Status, j.FileName, j.Location, j.Pages, j.SizeBytes, j.Error, j.CreatedAt, finished)
	if err != nil {
		return fmt.Errorf("upsert export job: %w", err)
	}
	return nil
}

// ListByUser returns the user's most recent exports first.
func (r *ExportJobsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ExportJob, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(`SELECT id, user_id, template, status, file_name, location, pages, size_bytes, error, created_at, finished_at
		FROM export_jobs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list export jobs: %w", err)
	}
	defer rows.Close()

	var out []domain.ExportJob
	for rows.Next() {
		var (
			j        domain.ExportJob
			id       string
			finished sql.NullTime
		)
		if err := rows.Scan(&id, &j.UserID, &j.Template, &j.Status, &j.FileName, &j.Location, &j.Pages, &j.SizeBytes, &j.Error, &j.CreatedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan export job: %w", err)
		}
		if err := j.ID.UnmarshalText([]byte(id)); err != nil {
			return nil, fmt.Errorf("parse export job id: %w", err)
		}
		if finished.Valid {
			j.FinishedAt = finished.Time.In(time.UTC)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
