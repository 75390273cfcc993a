// Where: internal/state/state.go
// What: Service lifecycle state and its derivation from containers.
// Why: Status must answer "is the bot serving" in one word, not a container dump.
package state

// State is where the containerized service sits in its lifecycle.
// The service has no intermediate states: it either never started,
// is serving, or has been terminated by the host.
type State string

const (
	// StateNotStarted means no server container has run yet.
	StateNotStarted State = "not started"
	// StateRunning means at least one server container is serving.
	StateRunning State = "running"
	// StateTerminated means the server container ran and was stopped.
	StateTerminated State = "terminated"
)

// ContainerInfo is the slice of container state the derivation needs.
type ContainerInfo struct {
	Name  string
	State string
}

// Derive folds the containers owned by this tool into one service state.
// A restarting container still counts as running; a created-but-never-
// started container does not count as terminated.
func Derive(containers []ContainerInfo) State {
	if countRunning(containers) > 0 {
		return StateRunning
	}
	for _, ctr := range containers {
		if ctr.State != "created" {
			return StateTerminated
		}
	}
	return StateNotStarted
}

func countRunning(containers []ContainerInfo) int {
	count := 0
	for _, ctr := range containers {
		switch ctr.State {
		case "running", "restarting":
			count++
		}
	}
	return count
}
