package types

// Model represents the LLM model file a pipeline is bound to.
type Model struct {
	// Stable identifier derived from the filename.
	// example: tinyllama-q4.gguf
	ID string `json:"id" example:"tinyllama-q4.gguf"`
	// Human-friendly name.
	// example: tinyllama-q4.gguf
	Name string `json:"name" example:"tinyllama-q4.gguf"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/TinyLlama.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/TinyLlama.Q4_K_M.gguf"`
	// Optional family detected from the filename (e.g., llama3, mistral, phi).
	// example: llama3
	Family string `json:"family,omitempty" example:"llama3"`
}

// Turn is one paired (user message, assistant response) unit of history.
type Turn struct {
	// User message text.
	// example: Hello!
	User string `json:"user" example:"Hello!"`
	// Assistant response text.
	// example: Hi, how can I help?
	Assistant string `json:"assistant" example:"Hi, how can I help?"`
}
