package syncer

// State identifies where a sync run is in its lifecycle.
//
// The happy path is Idle -> Fetching -> Analyzing -> {Merging | AwaitingApproval
// -> Merging} -> Saving -> Idle. Failed is reachable from every I/O stage and
// clears back to Idle when the next run begins.
type State string

// String returns the string representation of a State.
func (s State) String() string {
	return string(s)
}

// Sync run states.
const (
	// StateIdle means no run is in progress.
	StateIdle State = "idle"
	// StateFetching means records are being fetched from the selected accounts.
	StateFetching State = "fetching"
	// StateAnalyzing means the clustering engine is running.
	StateAnalyzing State = "analyzing"
	// StateAwaitingApproval means duplicate clusters are pending review.
	StateAwaitingApproval State = "awaiting-approval"
	// StateMerging means approved clusters are being merged.
	StateMerging State = "merging"
	// StateSaving means the final record set is being fanned out.
	StateSaving State = "saving"
	// StateFailed means the last run aborted on an unrecoverable error.
	StateFailed State = "failed"
)

// transitions is the set of legal state changes.
var transitions = map[State][]State{
	StateIdle:             {StateFetching},
	StateFetching:         {StateAnalyzing, StateFailed},
	StateAnalyzing:        {StateMerging, StateAwaitingApproval, StateFailed},
	StateAwaitingApproval: {StateMerging, StateIdle, StateFailed},
	StateMerging:          {StateSaving, StateFailed},
	StateSaving:           {StateIdle, StateFailed},
	StateFailed:           {StateFetching},
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active reports whether a run is in progress. A second BeginSync is
// refused while the state is active.
func (s State) Active() bool {
	switch s {
	case StateFetching, StateAnalyzing, StateAwaitingApproval, StateMerging, StateSaving:
		return true
	default:
		return false
	}
}

// SaveMode controls how the final record set is written to each account.
type SaveMode string

// String returns the string representation of a SaveMode.
func (m SaveMode) String() string {
	return string(m)
}

const (
	// SaveModeReplace deletes each account's fetched records before
	// inserting the final set, so repeated runs do not accumulate
	// duplicates. This is the default.
	SaveModeReplace SaveMode = "replace"
	// SaveModeAppend inserts the final set without deleting anything
	// already present in the destination account.
	SaveModeAppend SaveMode = "append"
)

// ParseSaveMode converts a string to a SaveMode.
func ParseSaveMode(s string) (SaveMode, bool) {
	switch SaveMode(s) {
	case SaveModeReplace:
		return SaveModeReplace, true
	case SaveModeAppend:
		return SaveModeAppend, true
	default:
		return "", false
	}
}
