package export

// State is a step of the export state machine.
type State int

// Export states. A request moves Idle, EnsuringVisible, Capturing,
// Assembling, Delivering and back to Idle; any failure passes through Failed
// on its way back to Idle.
const (
	Idle State = iota
	EnsuringVisible
	Capturing
	Assembling
	Delivering
	Failed
)

var stateNames = [...]string{"idle", "ensuring-visible", "capturing", "assembling", "delivering", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Transition is one state change reported to observers.
type Transition struct {
	From, To State
}

// Observer receives every state transition, synchronously and in order.
type Observer func(Transition)
