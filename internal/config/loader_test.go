package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", `
addr: ":9090"
model_path: "/models/llama3.gguf"
template: "llama3"
system_prompt: "Be brief."
history_size: 3
session: false
max_tokens: 256
stop:
  - "<|eot_id|>"
  - "END"
max_queue_depth: 8
max_wait_ms: 1500
log_level: "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.ModelPath != "/models/llama3.gguf" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Template != "llama3" || cfg.SystemPrompt != "Be brief." {
		t.Fatalf("prompt fields wrong: %+v", cfg)
	}
	if cfg.HistorySize != 3 || cfg.MaxTokens != 256 {
		t.Fatalf("numeric fields wrong: %+v", cfg)
	}
	if cfg.SessionEnabled() {
		t.Fatal("session: false not honored")
	}
	if len(cfg.Stop) != 2 || cfg.Stop[0] != "<|eot_id|>" {
		t.Fatalf("stop = %v", cfg.Stop)
	}
	if cfg.MaxQueueDepth != 8 || cfg.MaxWaitMS != 1500 {
		t.Fatalf("queue fields wrong: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{
  "addr": ":7070",
  "model_path": "/m/phi-3.gguf",
  "temperature": 0.5,
  "top_k": 50,
  "cors_enabled": true,
  "cors_origins": ["http://localhost:3000"]
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.Temperature != 0.5 || cfg.TopK != 50 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.CORSEnabled || len(cfg.CORSOrigins) != 1 {
		t.Fatalf("cors fields wrong: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeTemp(t, "cfg.toml", `
addr = ":6060"
model_path = "/m/mistral.gguf"
ctx_size = 4096
gpu_layers = 20
constrained = true
stop = ["</s>"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":6060" || cfg.CtxSize != 4096 || cfg.GPULayers != 20 {
		t.Fatalf("cfg = %+v", cfg)
	}
	cfg.Normalize()
	if cfg.GPULayers != 0 {
		t.Fatal("constrained must force gpu_layers to 0")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Error("empty path must fail")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file must fail")
	}
	path := writeTemp(t, "cfg.ini", "addr=:8080")
	if _, err := Load(path); err == nil {
		t.Error("unsupported extension must fail")
	}
	bad := writeTemp(t, "bad.json", "{not json")
	if _, err := Load(bad); err == nil {
		t.Error("malformed content must fail")
	}
}

func TestNormalizeDefaults(t *testing.T) {
	var cfg Config
	cfg.Normalize()
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.Threads <= 0 {
		t.Error("Threads not defaulted")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestSessionEnabledDefault(t *testing.T) {
	var cfg Config
	if !cfg.SessionEnabled() {
		t.Fatal("session must default to enabled")
	}
	off := false
	cfg.Session = &off
	if cfg.SessionEnabled() {
		t.Fatal("explicit session=false ignored")
	}
}
