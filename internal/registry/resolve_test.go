package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Meta-Llama-3-8B-Instruct.Q4_K_M.gguf")
	if err := os.WriteFile(path, []byte("gguf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m, err := ResolveModel(path)
	if err != nil {
		t.Fatalf("ResolveModel: %v", err)
	}
	if m.ID != "Meta-Llama-3-8B-Instruct.Q4_K_M.gguf" {
		t.Errorf("ID = %q", m.ID)
	}
	if !filepath.IsAbs(m.Path) {
		t.Errorf("Path not absolute: %q", m.Path)
	}
	if m.Family != "llama3" {
		t.Errorf("Family = %q, want llama3", m.Family)
	}
}

func TestResolveModelTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gemma-2b.gguf")
	if err := os.WriteFile(path, []byte("gguf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := ResolveModel("  " + path + "  ")
	if err != nil {
		t.Fatalf("ResolveModel: %v", err)
	}
	if m.Family != "gemma" {
		t.Errorf("Family = %q", m.Family)
	}
}

func TestResolveModelErrors(t *testing.T) {
	if _, err := ResolveModel(""); err == nil {
		t.Error("empty path must fail")
	}
	if _, err := ResolveModel("   "); err == nil {
		t.Error("blank path must fail")
	}

	dir := t.TempDir()
	notGGUF := filepath.Join(dir, "model.bin")
	if err := os.WriteFile(notGGUF, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ResolveModel(notGGUF); err == nil || !strings.Contains(err.Error(), ".gguf") {
		t.Errorf("non-gguf error = %v", err)
	}

	missing := filepath.Join(dir, "absent.gguf")
	if _, err := ResolveModel(missing); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("missing file error = %v", err)
	}
}
