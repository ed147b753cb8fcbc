package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func unmarshalData(env *envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("response missing data")
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// RegisterJob submits a processing job for indexed content.
func (c *Client) RegisterJob(ctx context.Context, req RegisterJobRequest) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/jobs/register_job", req, http.StatusCreated)
	return err
}

// GetJobs fetches a page of jobs, newest first. Total is returned alongside
// so callers can thread an updated Pagination value.
func (c *Client) GetJobs(ctx context.Context, jobType string, p Pagination) ([]Job, Pagination, error) {
	q := url.Values{}
	if jobType != "" {
		q.Set("job_type", jobType)
	}
	q.Set("limit", strconv.Itoa(p.PageSize))
	q.Set("offset", strconv.Itoa(p.Offset()))

	env, err := c.doJSON(ctx, http.MethodGet, "/jobs/get_jobs?"+q.Encode(), nil, http.StatusOK)
	if err != nil {
		return nil, p, err
	}

	var jobs []Job
	if err := unmarshalData(env, &jobs); err != nil {
		return nil, p, err
	}
	p.Total = env.Total
	return jobs, p, nil
}

// CancelJob requests cancellation of a job. The cancel is optimistic: the
// backend remains the source of truth for the final status.
func (c *Client) CancelJob(ctx context.Context, jobID string) error {
	q := url.Values{}
	q.Set("job_id", jobID)
	_, err := c.doJSON(ctx, http.MethodGet, "/jobs/cancel_job?"+q.Encode(), nil, http.StatusOK)
	return err
}
