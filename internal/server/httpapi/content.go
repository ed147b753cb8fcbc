package httpapi

import (
	"net/http"

	"github.com/medialift/medialift/internal/server/models"
)

type contentResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
	Status      string `json:"status"`
	Size        int64  `json:"size"`
	CreatedAt   int64  `json:"created_at"`
}

// GetContentList lists the user's content newest first, optionally filtered
// by content type.
func (h *Handler) GetContentList(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	limit, offset := pageParams(r)
	contentType := r.URL.Query().Get("content_type")

	items, total, err := h.repos.Contents().List(r.Context(), userID, contentType, limit, offset)
	if err != nil {
		h.log.Error(r.Context(), "content list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	out := make([]contentResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toContentResponse(c))
	}
	writeList(w, "OK", out, total)
}

func toContentResponse(c models.Content) contentResponse {
	return contentResponse{
		ID:          c.ID,
		Title:       c.Title,
		ContentType: c.ContentType,
		Status:      c.Status,
		Size:        c.Size,
		CreatedAt:   c.CreatedAt,
	}
}
