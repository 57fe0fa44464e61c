package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	ModelPath string `json:"model_path" yaml:"model_path" toml:"model_path"`

	// Prompt assembly
	Template     string `json:"template" yaml:"template" toml:"template"`
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt" toml:"system_prompt"`
	HistorySize  int    `json:"history_size" yaml:"history_size" toml:"history_size"`
	Session      *bool  `json:"session" yaml:"session" toml:"session"`

	// Engine parameters, passed through unmodified
	CtxSize   int  `json:"ctx_size" yaml:"ctx_size" toml:"ctx_size"`
	BatchSize int  `json:"batch_size" yaml:"batch_size" toml:"batch_size"`
	Threads   int  `json:"threads" yaml:"threads" toml:"threads"`
	GPULayers int  `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers"`
	// Constrained marks environments without GPU offload (CI, containers);
	// it forces gpu_layers to 0 regardless of the configured value.
	Constrained bool `json:"constrained" yaml:"constrained" toml:"constrained"`

	// Sampling and output bounds
	Temperature    float64  `json:"temperature" yaml:"temperature" toml:"temperature"`
	TopP           float64  `json:"top_p" yaml:"top_p" toml:"top_p"`
	TopK           int      `json:"top_k" yaml:"top_k" toml:"top_k"`
	MaxTokens      int      `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	MaxOutputBytes int      `json:"max_output_bytes" yaml:"max_output_bytes" toml:"max_output_bytes"`
	Stop           []string `json:"stop" yaml:"stop" toml:"stop"`

	// Queueing
	MaxQueueDepth int `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitMS     int `json:"max_wait_ms" yaml:"max_wait_ms" toml:"max_wait_ms"`

	// HTTP/observability
	LogLevel    string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat   string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Normalize fills derived values: the thread count comes from the available
// CPUs unless overridden, and constrained environments never offload to GPU.
func (c *Config) Normalize() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Threads <= 0 {
		c.Threads = runtime.NumCPU()
	}
	if c.Constrained {
		c.GPULayers = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// SessionEnabled reports the effective session setting (default on).
func (c *Config) SessionEnabled() bool {
	if c.Session == nil {
		return true
	}
	return *c.Session
}
