package upload

// State is the lifecycle position of one upload session.
//
// Transitions:
//
//	Idle -> Hashing             (on start)
//	Hashing -> RequestingTarget (digest ready)
//	RequestingTarget -> Uploading | Failed
//	Uploading -> Indexing | Cancelled | Failed
//	Indexing -> Completed | Failed
//
// Guard violations (size, type) short-circuit from Idle to Failed without
// any network call.
type State int

const (
	StateIdle State = iota
	StateHashing
	StateRequestingTarget
	StateUploading
	StateIndexing
	StateCompleted
	StateCancelled
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:             "idle",
	StateHashing:          "hashing",
	StateRequestingTarget: "requesting_target",
	StateUploading:        "uploading",
	StateIndexing:         "indexing",
	StateCompleted:        "completed",
	StateCancelled:        "cancelled",
	StateFailed:           "failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Terminal reports whether no further transitions can occur.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}
