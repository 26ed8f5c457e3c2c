package manager

// State represents the lifecycle state of the manager.
type State string

const (
	StateStarting State = "starting"
	StateReady    State = "ready"
	StateError    State = "error"
)

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State State
	Err   string
}
