package acceptflow

// State is the presentation state of one page instance.
type State int

const (
	Idle State = iota
	Processing
	Accepted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Processing:
		return "processing"
	case Accepted:
		return "accepted"
	default:
		return "unknown"
	}
}
