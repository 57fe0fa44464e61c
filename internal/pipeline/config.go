package pipeline

import (
	"runtime"
	"time"

	"promptd/internal/prompt"
	"promptd/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultHistorySize   = 5
	defaultMaxTokens     = 128
	defaultCtxSize       = 2048
	defaultBatchSize     = 512
	defaultTemperature   = 0.8
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
)

// Config encapsulates all tunables for Pipeline construction. The pipeline
// binds to exactly one model; it is immutable after construction.
type Config struct {
	Model        types.Model
	Family       prompt.Family
	SystemPrompt string

	// Engine parameters, passed through unmodified.
	CtxSize   int
	BatchSize int
	Threads   int
	GPULayers int

	// Sampling defaults, overridable per request.
	Temperature float64
	TopP        float64
	TopK        int

	// MaxTokens is the engine-side cap on newly generated tokens.
	MaxTokens int
	// MaxOutputBytes is the filter-side cap on emitted text (0 = disabled).
	// When reached mid-fragment, emission stops at the boundary and any
	// held-back partial stop match is discarded.
	MaxOutputBytes int

	// Stop sequences watched by the filter. Empty means the template
	// family's natural end-of-turn markers.
	Stop []string

	// HistorySize bounds the session window used for prompt building.
	HistorySize int
	// SessionEnabled turns rolling session memory on by default.
	SessionEnabled bool

	// Queue config
	MaxQueueDepth int
	MaxWait       time.Duration

	// Adapter overrides the model runtime (tests inject fakes here).
	Adapter EngineAdapter
	// Publisher receives lifecycle events; nil means drop them.
	Publisher EventPublisher
}

// NewWithConfig constructs a Pipeline from Config, applying defaults.
func NewWithConfig(cfg Config) *Pipeline {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.CtxSize <= 0 {
		cfg.CtxSize = defaultCtxSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxQueueDepth <= 0 {
		cfg.MaxQueueDepth = defaultMaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultMaxWait
	}
	if cfg.Family == "" {
		cfg.Family = prompt.DetectFamily(cfg.Model.ID)
	}
	p := &Pipeline{
		cfg:       cfg,
		state:     StateUnloaded,
		session:   NewSessionStore(),
		adapter:   cfg.Adapter,
		pub:       cfg.Publisher,
		genCh:     make(chan struct{}, 1),
		queueCh:   make(chan struct{}, cfg.MaxQueueDepth),
		startTime: time.Now(),
	}
	if p.adapter == nil {
		p.adapter = NewLlamaAdapter()
	}
	if p.pub == nil {
		p.pub = noopPublisher{}
	}
	return p
}
