package jobs

import (
	"context"

	"github.com/medialift/medialift/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, userID int64, jobID string) (*models.Job, error)
	List(ctx context.Context, userID int64, jobType string, limit, offset int) ([]models.Job, int, error)
	// UpdateStatus writes through the last published worker status so REST
	// snapshots stay fresh for reconnecting socket clients.
	UpdateStatus(ctx context.Context, jobID, status string, progress int, model string) error
	Cancel(ctx context.Context, userID int64, jobID string) error
}
