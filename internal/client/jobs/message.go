// Package jobs tracks server-side processing jobs: a shared socket client
// multiplexing push messages by job id, and a pure projector folding those
// messages into a displayable state per job.
package jobs

import "strings"

// StatusMessage is one push frame from the job status channel. Model is
// present only while a named processing stage is active; absence of Model
// combined with a terminal Status signals completion.
type StatusMessage struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Model    string `json:"model,omitempty"`
}

// subscribeFrame is sent once per subscription on every (re)connection; the
// server keeps no subscription state across reconnects.
type subscribeFrame struct {
	Token string `json:"token"`
	JobID string `json:"job_id"`
}

// IsTerminalStatus reports whether a status ends the job's lifecycle.
func IsTerminalStatus(status string) bool {
	switch strings.ToLower(status) {
	case "completed", "failed", "cancelled":
		return true
	}
	return false
}
