package settlement

// State is the per-attempt investment lifecycle. REQUESTED through ADMITTED
// and INTENT_OPEN happen synchronously in the investment handler; CONFIRMED
// and SETTLED happen when the processor confirmation arrives, which may be
// much later.
type State string

const (
	StateRequested  State = "REQUESTED"
	StateAdmitted   State = "ADMITTED"
	StateIntentOpen State = "INTENT_OPEN"
	StateConfirmed  State = "CONFIRMED"
	StateSettled    State = "SETTLED"
	StateRejected   State = "REJECTED"
	StateFailed     State = "FAILED"
)

var transitions = map[State][]State{
	StateRequested:  {StateAdmitted, StateRejected},
	StateAdmitted:   {StateIntentOpen, StateRejected},
	StateIntentOpen: {StateConfirmed, StateFailed},
	StateConfirmed:  {StateSettled, StateFailed},
}

// CanTransition reports whether moving to next is a legal step.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the attempt can move no further.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}
