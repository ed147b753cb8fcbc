package httpapi

import "net/http"

type tierResponse struct {
	Tier       string `json:"tier"`
	MaxFilters int    `json:"max_filters"`
}

// GetUserTier reports the authenticated user's service tier and its filter
// cap, so the client form enforces the same bound the job registration
// endpoint does.
func (h *Handler) GetUserTier(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	user, err := h.repos.Users().GetByID(r.Context(), userID)
	if err != nil {
		h.log.Error(r.Context(), "user lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, "OK", tierResponse{
		Tier:       user.Tier,
		MaxFilters: h.config.TierMaxFilters[user.Tier],
	})
}
