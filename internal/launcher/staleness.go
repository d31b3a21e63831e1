package launcher

import "time"

// State describes whether the build container needs (re)provisioning.
type State int

const (
	// StateNotProvisioned means no marker file exists yet.
	StateNotProvisioned State = iota
	// StateStale means the container is gone or its Dockerfile changed.
	StateStale
	// StateFresh means the running container is up to date.
	StateFresh
)

func (s State) String() string {
	switch s {
	case StateNotProvisioned:
		return "not-provisioned"
	case StateStale:
		return "stale"
	case StateFresh:
		return "fresh"
	default:
		return "unknown"
	}
}

// Condition carries the observed inputs to the staleness decision.
type Condition struct {
	MarkerExists      bool
	ContainerRunning  bool
	DockerfileExists  bool
	DockerfileModTime time.Time
	MarkerModTime     time.Time
}

// Evaluate decides whether the container must be (re)provisioned. The marker
// file's modification time is the persisted checkpoint: a Dockerfile touched
// after the last successful provisioning makes the container stale.
func Evaluate(c Condition) State {
	if !c.MarkerExists {
		return StateNotProvisioned
	}
	if !c.ContainerRunning {
		return StateStale
	}
	if c.DockerfileExists && c.DockerfileModTime.After(c.MarkerModTime) {
		return StateStale
	}
	return StateFresh
}
