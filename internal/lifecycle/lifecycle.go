package lifecycle

import "sync/atomic"

// Phase is the process lifecycle stage reported by /health.
type Phase int32

const (
	Starting Phase = iota
	Serving
	Draining
)

func (p Phase) String() string {
	switch p {
	case Starting:
		return "starting"
	case Serving:
		return "serving"
	case Draining:
		return "shutting-down"
	default:
		return "unknown"
	}
}

var phase atomic.Int32

// SetPhase records the current lifecycle stage. main sets Serving once the listener is up
// and Draining when SIGTERM/SIGINT arrives.
func SetPhase(p Phase) {
	phase.Store(int32(p))
}

// CurrentPhase returns the current lifecycle stage.
func CurrentPhase() Phase {
	return Phase(phase.Load())
}

// IsShuttingDown returns true once draining has begun.
func IsShuttingDown() bool {
	return CurrentPhase() == Draining
}
