package types

// GenerateRequest represents a generation request payload.
type GenerateRequest struct {
	// User message to generate a reply for. May be empty (a degenerate but
	// well-formed prompt is still produced).
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// Optional system prompt overriding the configured one.
	// example: You are a terse assistant.
	System string `json:"system,omitempty" example:"You are a terse assistant."`
	// Optional template family overriding the configured one
	// (llama, llama3, alpaca, chatml, mistral, phi, gemma).
	// example: llama3
	Template string `json:"template,omitempty" example:"llama3"`
	// Optional explicit conversation history. When set it replaces the
	// session window for this request.
	History []Turn `json:"history,omitempty"`
	// Optional per-request session override. Defaults to the server setting.
	// example: true
	Session *bool `json:"session,omitempty" example:"true"`
	// Maximum number of new tokens to generate.
	// example: 128
	MaxTokens int `json:"max_tokens,omitempty" example:"128"`
	// Sampling temperature (higher = more random).
	// example: 0.7
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability.
	// example: 0.9
	TopP float64 `json:"top_p,omitempty" example:"0.9"`
	// Top-K sampling: limit candidates to top K tokens.
	// example: 40
	TopK int `json:"top_k,omitempty" example:"40"`
	// Optional stop sequences. Output is truncated before the earliest match.
	// example: ["\n\n","END"]
	Stop []string `json:"stop,omitempty" example:"[\"\\n\\n\",\"END\"]"`
	// Random seed for reproducibility; 0 or omitted lets the engine choose.
	// example: 42
	Seed int64 `json:"seed,omitempty" example:"42"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// SessionResponse wraps the turns returned by GET /session.
type SessionResponse struct {
	// Conversation turns in chronological order, oldest first.
	Turns []Turn `json:"turns"`
	// Size of the window used for prompt building.
	// example: 5
	HistorySize int `json:"history_size" example:"5"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Pipeline lifecycle state (unloaded, loading, ready, draining, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Model bound to this pipeline.
	Model Model `json:"model"`
	// Template family used for prompt assembly.
	// example: llama3
	Template string `json:"template" example:"llama3"`
	// Current queue length for incoming requests.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Number of in-flight generations (0 or 1).
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued requests allowed before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Whether rolling session memory is enabled.
	// example: true
	SessionEnabled bool `json:"session_enabled" example:"true"`
	// Number of turns held in session memory.
	// example: 12
	SessionTurns int `json:"session_turns" example:"12"`
	// Total naturally completed generations since start.
	// example: 37
	GenerationsTotal uint64 `json:"generations_total" example:"37"`
	// Total abandoned (client-canceled) generations since start.
	// example: 2
	AbandonedTotal uint64 `json:"abandoned_total" example:"2"`
	// Last error observed by the pipeline (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
