package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/medialift/medialift/internal/common"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login authenticates and installs the returned bearer token on the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	env, err := c.doJSON(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, http.StatusOK)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized {
			return common.ErrorUnauthorized
		}
		return err
	}

	var lr loginResponse
	if err := unmarshalData(env, &lr); err != nil {
		return err
	}
	c.token = lr.AccessToken
	return nil
}
