package repomanager

import (
	"context"
	"database/sql"

	"github.com/medialift/medialift/internal/server/repositories/contents"
	"github.com/medialift/medialift/internal/server/repositories/jobs"
	"github.com/medialift/medialift/internal/server/repositories/users"
)

// RepositoryManager bundles the per-entity repositories behind one handle.
type RepositoryManager interface {
	Conn() *sql.DB
	Users() users.Repository
	Contents() contents.Repository
	Jobs() jobs.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}
