package api

// Wire types for the backend REST contract. Field names follow the backend
// exactly; do not rename tags without a coordinated backend change.

// PresignRequest asks the backend for a signed upload target.
// MD5 is the lowercase hex digest of the file content.
type PresignRequest struct {
	Filename string `json:"filename"`
	Filetype string `json:"filetype"`
	MD5      string `json:"md5"`
	Filesize int64  `json:"filesize"`
}

// PresignTarget is the granted upload destination. MD5 here is the
// base64-encoded raw digest, as it must be sent in the Content-MD5 header
// of the PUT (it is bound into the signature).
type PresignTarget struct {
	SignedURL string `json:"signed_url"`
	Filename  string `json:"filename"`
	MD5       string `json:"md5"`
	ContentID int64  `json:"id"`
}

// IndexRequest registers an uploaded object as a content record.
type IndexRequest struct {
	Config      IndexConfig `json:"config"`
	ProcessType string      `json:"processtype"`
	MD5         string      `json:"md5"`
	IDRelated   *int64      `json:"id_related"`
}

type IndexConfig struct {
	Filename      string `json:"filename"`
	IndexFilename string `json:"indexfilename"`
}

// RegisterJobRequest submits a processing job for indexed content.
type RegisterJobRequest struct {
	JobType    string    `json:"job_type"`
	ConfigJSON JobConfig `json:"config_json"`
}

type JobConfig struct {
	JobData JobData `json:"job_data"`
}

type JobData struct {
	ContentID   int64                  `json:"content_id"`
	ContentType string                 `json:"content_type"`
	Filters     map[string]FilterValue `json:"filters"`
}

type FilterValue struct {
	Active bool   `json:"active"`
	Model  string `json:"model,omitempty"`
	Factor string `json:"factor,omitempty"`
}

// Job is the read-only projection of a server-owned job.
type Job struct {
	JobID     string `json:"job_id"`
	ContentID int64  `json:"content_id"`
	JobType   string `json:"job_type"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	Model     string `json:"model,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// ContentItem is one row of the content listing.
type ContentItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
	Status      string `json:"status"`
	Size        int64  `json:"size"`
	CreatedAt   int64  `json:"created_at"`
}

// Pagination is the explicit paging value object threaded through listing
// calls. Total is filled in by the server.
type Pagination struct {
	Page     int
	PageSize int
	Total    int
}

// Offset converts the 1-based page into a row offset.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
