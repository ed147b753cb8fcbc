package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medialift/medialift/internal/common"
	"github.com/medialift/medialift/internal/server/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login verifies credentials and returns a signed access token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.repos.Users().GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.log.Error(r.Context(), "login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(user.ID, []byte(h.config.SecretKey), h.config.AccessTokenValidityDuration)
	if err != nil {
		h.log.Error(r.Context(), "token generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, "Login successful", loginResponse{AccessToken: token})
}
