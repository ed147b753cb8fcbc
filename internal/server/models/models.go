// Package models defines the server-side database rows.
package models

// User is an account row. Tier bounds storage and filter limits.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Tier         string
	StorageUsed  int64
}

// Content is one uploaded object. Status moves processing -> completed once
// the object is indexed; Link is the object-storage key.
type Content struct {
	ID          int64
	UserID      int64
	Title       string
	Link        string
	MD5         string
	Status      string
	ContentType string
	Size        int64
	CreatedAt   int64
}

// Job is a server-tracked asynchronous processing task. Progress and Model
// reflect the last status published by a worker.
type Job struct {
	JobID     string
	UserID    int64
	ContentID int64
	JobType   string
	Status    string
	Progress  int
	Model     string
	Config    []byte
	CreatedAt int64
}

// Job statuses.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusCancelled = "cancelled"
)

// Content statuses.
const (
	ContentStatusProcessing = "processing"
	ContentStatusCompleted  = "completed"
)

// TerminalJobStatus reports whether a job status is final.
func TerminalJobStatus(status string) bool {
	switch status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}
