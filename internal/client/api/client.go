// Package api implements the typed REST client for the backend. Every call
// carries the bearer token; responses use the backend's {detail, data}
// envelope.
package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/medialift/medialift/internal/common"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// SetToken installs the bearer token used on subsequent calls.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Detail string          `json:"detail"`
	Data   json.RawMessage `json:"data"`
	Total  int             `json:"total"`
}

// StatusError reports a non-success HTTP response, keeping the server's
// detail message when one was present.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, wantStatus int) (*envelope, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	var env envelope
	// Tolerate empty or non-envelope bodies; the status check below decides.
	data, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(data, &env)

	if resp.StatusCode != wantStatus {
		return nil, &StatusError{StatusCode: resp.StatusCode, Detail: env.Detail}
	}

	return &env, nil
}

// ContentMD5FromHex converts a lowercase hex MD5 digest into the base64 form
// required by the Content-MD5 header.
func ContentMD5FromHex(hexDigest string) (string, error) {
	raw, err := hex.DecodeString(hexDigest)
	if err != nil {
		return "", fmt.Errorf("invalid md5 digest: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
