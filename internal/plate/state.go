package plate

// State is the lifecycle position of the plate being built.
type State int

const (
	StateEmpty State = iota
	StateCapturing
	StateRecognizing
	StateDraft
	StateCommitted
	StateDiscarded
)

var stateNames = map[State]string{
	StateEmpty:       "empty",
	StateCapturing:   "capturing",
	StateRecognizing: "recognizing",
	StateDraft:       "draft",
	StateCommitted:   "committed",
	StateDiscarded:   "discarded",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Idle reports whether no plate is in progress. Committed and discarded
// plates behave like an empty one.
func (s State) Idle() bool {
	return s == StateEmpty || s == StateCommitted || s == StateDiscarded
}
