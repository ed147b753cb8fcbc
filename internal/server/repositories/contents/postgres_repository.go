package contents

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

func (r *PostgresRepository) Create(ctx context.Context, content *models.Content) (*models.Content, error) {

	if content.CreatedAt == 0 {
		content.CreatedAt = time.Now().Unix()
	}

	query :=
		`INSERT INTO contents (user_id, title, link, md5, status, content_type, size, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		content.UserID, content.Title, content.Link, content.MD5,
		content.Status, content.ContentType, content.Size, content.CreatedAt).Scan(&content.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return content, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id int64) (*models.Content, error) {
	query :=
		`SELECT id, user_id, title, link, md5, status, content_type, size, created_at
		 FROM contents
		 WHERE id = $1 AND user_id = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *PostgresRepository) GetByMD5(ctx context.Context, userID int64, md5 string) (*models.Content, error) {
	query :=
		`SELECT id, user_id, title, link, md5, status, content_type, size, created_at
		 FROM contents
		 WHERE user_id = $1 AND md5 = $2 AND status = 'processing'
		 ORDER BY created_at DESC
		 LIMIT 1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, md5))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Content, error) {
	content := &models.Content{}
	err := row.Scan(
		&content.ID, &content.UserID, &content.Title, &content.Link, &content.MD5,
		&content.Status, &content.ContentType, &content.Size, &content.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return content, nil
}

func (r *PostgresRepository) MarkIndexed(ctx context.Context, userID, id int64, contentType string, size int64) error {
	query :=
		`UPDATE contents
		 SET status = 'completed', content_type = $3, size = $4
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID, contentType, size)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID int64, contentType string, limit, offset int) ([]models.Content, int, error) {

	var total int
	countQuery := `SELECT count(*) FROM contents WHERE user_id = $1 AND ($2 = '' OR content_type = $2)`
	if err := r.db.QueryRowContext(ctx, countQuery, userID, contentType).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query :=
		`SELECT id, user_id, title, link, md5, status, content_type, size, created_at
		 FROM contents
		 WHERE user_id = $1 AND ($2 = '' OR content_type = $2)
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, contentType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Content
	for rows.Next() {
		var c models.Content
		err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.Link, &c.MD5,
			&c.Status, &c.ContentType, &c.Size, &c.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return out, total, nil
}
