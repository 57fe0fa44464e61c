package pipeline

// Event represents a pipeline lifecycle event.
// Minimal and stable: name + model ID and optional fields via key/values.
type Event struct {
	Name    string
	ModelID string
	Fields  map[string]any
}

// Event names published by the pipeline.
const (
	EventEngineLoad        = "engine_load"
	EventGenerateStart     = "generate_start"
	EventGenerateComplete  = "generate_complete"
	EventGenerateAbandoned = "generate_abandoned"
	EventGenerateError     = "generate_error"
	EventSessionAppend     = "session_append"
)

// EventPublisher receives events from the pipeline. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
