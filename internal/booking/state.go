package booking

// State is a step of the per-request transaction.
//
//	Idle -> CollectingInput -> Validating -> CheckingAvailability
//	     -> {Rejected | Committing} -> {Committed | RolledBack}
//
// Cancellations pass through Authorizing between Validating and
// CheckingAvailability.
type State int

const (
	StateIdle State = iota
	StateCollectingInput
	StateValidating
	StateAuthorizing
	StateCheckingAvailability
	StateRejected
	StateCommitting
	StateCommitted
	StateRolledBack
)

var stateNames = [...]string{
	StateIdle:                 "idle",
	StateCollectingInput:      "collecting_input",
	StateValidating:           "validating",
	StateAuthorizing:          "authorizing",
	StateCheckingAvailability: "checking_availability",
	StateRejected:             "rejected",
	StateCommitting:           "committing",
	StateCommitted:            "committed",
	StateRolledBack:           "rolled_back",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText renders the state name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateRejected || s == StateCommitted || s == StateRolledBack
}
