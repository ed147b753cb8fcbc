package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medialift/medialift/internal/common"
	"github.com/medialift/medialift/internal/server/models"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, job *models.Job) error {

	if job.CreatedAt == 0 {
		job.CreatedAt = time.Now().Unix()
	}

	query :=
		`INSERT INTO jobs (job_id, user_id, content_id, job_type, status, progress, model, config, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 `

	_, err := r.db.ExecContext(ctx, query,
		job.JobID, job.UserID, job.ContentID, job.JobType,
		job.Status, job.Progress, job.Model, job.Config, job.CreatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID int64, jobID string) (*models.Job, error) {
	query :=
		`SELECT job_id, user_id, content_id, job_type, status, progress, model, config, created_at
		 FROM jobs
		 WHERE job_id = $1 AND user_id = $2
		 `

	job := &models.Job{}
	err := r.db.QueryRowContext(ctx, query, jobID, userID).Scan(
		&job.JobID, &job.UserID, &job.ContentID, &job.JobType,
		&job.Status, &job.Progress, &job.Model, &job.Config, &job.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return job, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID int64, jobType string, limit, offset int) ([]models.Job, int, error) {

	var total int
	countQuery := `SELECT count(*) FROM jobs WHERE user_id = $1 AND ($2 = '' OR job_type = $2)`
	if err := r.db.QueryRowContext(ctx, countQuery, userID, jobType).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query :=
		`SELECT job_id, user_id, content_id, job_type, status, progress, model, config, created_at
		 FROM jobs
		 WHERE user_id = $1 AND ($2 = '' OR job_type = $2)
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, jobType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		var j models.Job
		err := rows.Scan(&j.JobID, &j.UserID, &j.ContentID, &j.JobType,
			&j.Status, &j.Progress, &j.Model, &j.Config, &j.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return out, total, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, jobID, status string, progress int, model string) error {
	query :=
		`UPDATE jobs SET status = $2, progress = $3, model = $4
		 WHERE job_id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, jobID, status, progress, model)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Cancel(ctx context.Context, userID int64, jobID string) error {
	// Terminal jobs are not cancellable; the cancel is optimistic and the
	// worker confirms it via the status feed.
	query :=
		`UPDATE jobs SET status = 'cancelled'
		 WHERE job_id = $1 AND user_id = $2
		   AND status NOT IN ('completed', 'failed', 'cancelled')
		 `

	res, err := r.db.ExecContext(ctx, query, jobID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
