package api

import (
	"context"
	"net/http"
)

// UserTier describes the service tier the server granted the logged-in user.
type UserTier struct {
	Tier       string `json:"tier"`
	MaxFilters int    `json:"max_filters"`
}

// GetUserTier fetches the caller's tier and its filter cap.
func (c *Client) GetUserTier(ctx context.Context) (*UserTier, error) {
	env, err := c.doJSON(ctx, http.MethodGet, "/options/user_tier", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var tier UserTier
	if err := unmarshalData(env, &tier); err != nil {
		return nil, err
	}
	return &tier, nil
}
