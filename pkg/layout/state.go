package layout

// State describes where a recalculation run is, or how it finished.
type State int

const (
	// StateIdle means no run has started.
	StateIdle State = iota

	// StateSearching means a run is in progress.
	StateSearching

	// StateConverged means the run finished with a full pass that accepted
	// no more moves and a cost within the acceptable threshold.
	StateConverged

	// StateCancelled means the run was interrupted; the returned layout is
	// the one from the last completed pass.
	StateCancelled

	// StateExhausted means the try budget ran out; the returned layout is
	// the best one found.
	StateExhausted
)

// Terminal reports whether the state describes a finished run.
func (s State) Terminal() bool {
	switch s {
	case StateConverged, StateCancelled, StateExhausted:
		return true
	}
	return false
}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateConverged:
		return "converged"
	case StateCancelled:
		return "cancelled"
	case StateExhausted:
		return "exhausted"
	}
	return "unknown"
}
