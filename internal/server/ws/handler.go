package ws

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/medialift/medialift/internal/common"
	"github.com/medialift/medialift/internal/logging"
	"github.com/medialift/medialift/internal/server/auth"
	"github.com/medialift/medialift/internal/server/repositories/jobs"
)

// subscribeFrame is what a client sends to start watching a job. The token
// rides on every frame because the websocket handshake itself carries no
// Authorization header in browsers.
type subscribeFrame struct {
	Token string `json:"token"`
	JobID string `json:"job_id"`
}

// Handler upgrades connections and processes subscribe frames.
type Handler struct {
	hub       *Hub
	jobs      jobs.Repository
	secretKey []byte
	upgrader  websocket.Upgrader
	log       logging.Logger
}

func NewHandler(hub *Hub, jobsRepo jobs.Repository, secretKey []byte, log logging.Logger) *Handler {
	return &Handler{
		hub:       hub,
		jobs:      jobsRepo,
		secretKey: secretKey,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &conn{ws: wsConn}
	defer func() {
		h.hub.drop(c)
		_ = wsConn.Close()
	}()

	for {
		var frame subscribeFrame
		if err := wsConn.ReadJSON(&frame); err != nil {
			return
		}
		if frame.Token == "" || frame.JobID == "" {
			continue
		}

		userID, err := auth.GetUserIDFromToken(frame.Token, h.secretKey)
		if err != nil {
			// A bad token ends the connection; the client reconnects and
			// re-authenticates with a fresh token.
			_ = c.sendJSON(StatusMessage{JobID: frame.JobID, Status: "unauthorized"})
			return
		}

		// Ownership check: only the job's owner may watch it.
		job, err := h.jobs.Get(r.Context(), userID, frame.JobID)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				h.log.Error(r.Context(), "job lookup failed", "job_id", frame.JobID, "error", err)
			}
			continue
		}

		h.hub.subscribe(frame.JobID, c)

		// Seed the subscriber with the last known state so a reconnect
		// does not show a stale or empty panel until the next update.
		_ = c.sendJSON(StatusMessage{
			JobID:    job.JobID,
			Status:   job.Status,
			Progress: job.Progress,
			Model:    job.Model,
		})
	}
}
