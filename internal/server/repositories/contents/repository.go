package contents

import (
	"context"

	"github.com/medialift/medialift/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, content *models.Content) (*models.Content, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Content, error)
	// GetByMD5 returns the newest processing row for a digest, used to match
	// an indexfile call to its pre-upload row.
	GetByMD5(ctx context.Context, userID int64, md5 string) (*models.Content, error)
	MarkIndexed(ctx context.Context, userID, id int64, contentType string, size int64) error
	List(ctx context.Context, userID int64, contentType string, limit, offset int) ([]models.Content, int, error)
}
