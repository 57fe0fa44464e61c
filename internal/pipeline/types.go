package pipeline

// State represents the lifecycle state of the pipeline's engine binding.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateDraining State = "draining"
	StateError    State = "error"
)

// Completion reasons reported by a finished stream.
const (
	ReasonStop   = "stop"   // a configured stop sequence matched
	ReasonEOS    = "eos"    // the engine signaled natural end
	ReasonLength = "length" // the emitted-output cap was reached
)
