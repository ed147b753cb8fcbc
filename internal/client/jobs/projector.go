package jobs

import (
	"fmt"
	"strings"
)

// UploadingModel is the pseudo-model name the backend sends while content is
// still being moved to object storage.
const UploadingModel = "Uploading Content"

type DisplayKind int

const (
	// DisplayUnknown is the zero value before any message arrived.
	DisplayUnknown DisplayKind = iota
	// DisplayInitiating shows the indeterminate "starting up" spinner.
	DisplayInitiating
	// DisplayUploading shows the indeterminate cloud-storage transfer notice.
	DisplayUploading
	// DisplayRunning shows a named model with a numeric progress bar.
	DisplayRunning
	// DisplayTerminal shows the final status badge; no further updates are
	// expected for the job.
	DisplayTerminal
)

// DisplayState is the projection of one job's message stream into what a
// job card renders.
type DisplayState struct {
	Kind          DisplayKind
	Label         string
	Status        string
	Model         string
	Progress      int
	Indeterminate bool
}

// Terminal reports whether the state expects no further updates.
func (d DisplayState) Terminal() bool { return d.Kind == DisplayTerminal }

const initiatingLabel = "Job initiation in process"

func initiating() DisplayState {
	return DisplayState{Kind: DisplayInitiating, Label: initiatingLabel, Indeterminate: true}
}

// Project folds one status message into the prior display state. It is a
// pure function; rule order is fixed and deterministic:
//
//  1. progress == 0 renders as initiating regardless of any model present.
//  2. Processing/Loading statuses render as initiating regardless of progress.
//  3. the "Uploading Content" model renders as the cloud-storage notice and
//     latches: it persists across model-absent non-terminal messages until a
//     different model or a terminal status arrives.
//  4. any other named model renders the status and model name together
//     with a numeric progress bar.
//  5. no model plus a terminal status renders the final badge at 100%.
//
// Messages carry no sequence numbers; within one job, arrival order wins.
func Project(prior DisplayState, msg StatusMessage) DisplayState {
	switch {
	case msg.Progress == 0:
		return initiating()

	case strings.EqualFold(msg.Status, "processing") || strings.EqualFold(msg.Status, "loading"):
		return initiating()

	case msg.Model == UploadingModel:
		return DisplayState{
			Kind:          DisplayUploading,
			Label:         "Uploading to Cloud Storage",
			Status:        msg.Status,
			Model:         msg.Model,
			Indeterminate: true,
		}

	case msg.Model != "":
		return DisplayState{
			Kind:     DisplayRunning,
			Label:    fmt.Sprintf("%s — %s", msg.Status, msg.Model),
			Status:   msg.Status,
			Model:    msg.Model,
			Progress: msg.Progress,
		}

	case IsTerminalStatus(msg.Status):
		return DisplayState{
			Kind:     DisplayTerminal,
			Label:    capitalize(msg.Status),
			Status:   msg.Status,
			Progress: 100,
		}

	default:
		// Model absent, status non-terminal: the upload latch holds, and
		// last message wins for progress otherwise.
		if prior.Kind == DisplayUploading {
			return prior
		}
		next := prior
		if msg.Progress > next.Progress {
			next.Progress = msg.Progress
		}
		next.Status = msg.Status
		return next
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Projector accumulates the display state for a single job. Messages for
// other jobs are ignored.
type Projector struct {
	jobID string
	state DisplayState
}

func NewProjector(jobID string) *Projector {
	return &Projector{jobID: jobID}
}

// Seed installs a display state derived from a REST snapshot, used to
// recover after messages were missed while disconnected.
func (p *Projector) Seed(state DisplayState) { p.state = state }

// Apply folds a message into the projector's state and returns the new
// state. Messages for other job ids leave the state untouched.
func (p *Projector) Apply(msg StatusMessage) DisplayState {
	if msg.JobID != p.jobID {
		return p.state
	}
	p.state = Project(p.state, msg)
	return p.state
}

func (p *Projector) State() DisplayState { return p.state }

// SnapshotState builds a display state from a polled job row, for seeding a
// projector when the socket may have dropped messages.
func SnapshotState(status string, progress int, model string) DisplayState {
	return Project(DisplayState{}, StatusMessage{Status: status, Progress: progress, Model: model})
}
