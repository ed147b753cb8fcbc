package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medialift/medialift/internal/logging"
	sc "github.com/medialift/medialift/internal/server/config"
	"github.com/medialift/medialift/internal/server/repositories/repomanager"
)

// PresignService signs direct-upload URLs.
type PresignService interface {
	PresignPut(ctx context.Context, key, contentType, contentMD5 string) (string, error)
}

// Handler holds the dependencies shared by all REST endpoints.
type Handler struct {
	config    *sc.Config
	repos     repomanager.RepositoryManager
	presigner PresignService
	log       logging.Logger
}

func NewHandler(config *sc.Config, repos repomanager.RepositoryManager, presigner PresignService, log logging.Logger) *Handler {
	return &Handler{config: config, repos: repos, presigner: presigner, log: log}
}

// Router assembles the chi mux. Everything except login requires a bearer
// token; the websocket endpoint authenticates per subscribe frame instead.
func (h *Handler) Router(ws http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(LoggingMiddleware(h.log))

	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware([]byte(h.config.SecretKey)))
		r.Post("/upload/generate_presigned_post", h.GeneratePresignedPost)
		r.Post("/upload/indexfile", h.IndexFile)
		r.Post("/jobs/register_job", h.RegisterJob)
		r.Get("/jobs/get_jobs", h.GetJobs)
		r.Get("/jobs/cancel_job", h.CancelJob)
		r.Get("/content/get_content_list", h.GetContentList)
		r.Get("/options/user_tier", h.GetUserTier)
	})

	if ws != nil {
		r.Handle("/jobs/ws", ws)
	}

	return r
}

// pageParams reads limit/offset query values with sane bounds.
func pageParams(r *http.Request) (limit, offset int) {
	limit = 10
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
