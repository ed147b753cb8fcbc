package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// GetContentList fetches a page of the user's content. The returned
// Pagination carries the server's total row count.
func (c *Client) GetContentList(ctx context.Context, contentType string, p Pagination) ([]ContentItem, Pagination, error) {
	q := url.Values{}
	if contentType != "" {
		q.Set("content_type", contentType)
	}
	q.Set("limit", strconv.Itoa(p.PageSize))
	q.Set("offset", strconv.Itoa(p.Offset()))

	env, err := c.doJSON(ctx, http.MethodGet, "/content/get_content_list?"+q.Encode(), nil, http.StatusOK)
	if err != nil {
		return nil, p, err
	}

	var items []ContentItem
	if err := unmarshalData(env, &items); err != nil {
		return nil, p, err
	}
	p.Total = env.Total
	return items, p, nil
}
