package pipeline

import (
	"context"
	"errors"
)

// EngineAdapter abstracts the model runtime used by the Pipeline.
// Concrete implementations (e.g., llama.cpp) should satisfy this interface.
type EngineAdapter interface {
	// Load prepares a reusable engine session for the given model path.
	Load(modelPath string, cfg EngineConfig) (EngineSession, error)
}

// EngineSession is one loaded model context. It is stateful and
// non-reentrant: callers must serialize Generate calls.
type EngineSession interface {
	// Generate streams raw text fragments for the given prompt. onToken is
	// invoked once per produced fragment; returning a non-nil error stops
	// generation and Generate returns that same error. Implementations must
	// return ctx.Err() when the context is canceled and a backend error on
	// decode failure.
	Generate(ctx context.Context, prompt string, params EngineParams, onToken func(string) error) error
	// Close releases any resources associated with the session.
	Close() error
}

// EngineConfig captures load-time engine options, passed through unmodified.
type EngineConfig struct {
	CtxSize   int
	BatchSize int
	Threads   int
	GPULayers int
}

// EngineParams captures per-call generation parameters.
type EngineParams struct {
	MaxTokens   int
	Temperature float32
	TopP        float32
	TopK        int
	Seed        int
}

// errHalt is returned by the orchestrator's token callback once the stop
// filter reports completion; it tells the engine to stop decoding and is not
// an error from the caller's point of view.
var errHalt = errors.New("generation halted")
