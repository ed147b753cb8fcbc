package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/medialift/medialift/internal/common"
)

// GeneratePresignedPost requests a signed upload target. A 507 response maps
// to common.ErrStorageQuotaExceeded; any other non-201 response surfaces the
// server's detail message when present.
func (c *Client) GeneratePresignedPost(ctx context.Context, req PresignRequest) (*PresignTarget, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/upload/generate_presigned_post", req, http.StatusCreated)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusInsufficientStorage {
			return nil, common.ErrStorageQuotaExceeded
		}
		return nil, err
	}

	var target PresignTarget
	if err := unmarshalData(env, &target); err != nil {
		return nil, err
	}
	if target.SignedURL == "" {
		return nil, fmt.Errorf("presign response missing signed_url")
	}
	return &target, nil
}

// IndexFile registers the uploaded object as a content record. Any non-201
// response maps to common.ErrIndexingRejected so callers can distinguish
// "uploaded but not indexed" from "never uploaded".
func (c *Client) IndexFile(ctx context.Context, req IndexRequest) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/upload/indexfile", req, http.StatusCreated)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			if se.Detail != "" {
				return fmt.Errorf("%w: %s", common.ErrIndexingRejected, se.Detail)
			}
			return common.ErrIndexingRejected
		}
		return err
	}
	return nil
}
