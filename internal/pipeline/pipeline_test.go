package pipeline

import (
	"context"
	"testing"
	"time"

	"promptd/internal/prompt"
	"promptd/pkg/types"
)

func TestNewWithConfigDefaults(t *testing.T) {
	p := NewWithConfig(Config{
		Model:   types.Model{ID: "mistral-7b-instruct.Q4.gguf", Path: "/m.gguf"},
		Adapter: &fakeAdapter{sess: &fakeSession{}},
	})
	if p.cfg.HistorySize != defaultHistorySize {
		t.Errorf("HistorySize = %d, want %d", p.cfg.HistorySize, defaultHistorySize)
	}
	if p.cfg.MaxTokens != defaultMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", p.cfg.MaxTokens, defaultMaxTokens)
	}
	if p.cfg.CtxSize != defaultCtxSize {
		t.Errorf("CtxSize = %d, want %d", p.cfg.CtxSize, defaultCtxSize)
	}
	if p.cfg.MaxWait != defaultMaxWait {
		t.Errorf("MaxWait = %v, want %v", p.cfg.MaxWait, defaultMaxWait)
	}
	if p.cfg.Threads <= 0 {
		t.Error("Threads not defaulted")
	}
	// Family falls back to filename detection.
	if p.cfg.Family != prompt.FamilyMistral {
		t.Errorf("Family = %s, want %s", p.cfg.Family, prompt.FamilyMistral)
	}
	st := p.Status()
	if st.State != string(StateUnloaded) {
		t.Errorf("initial state = %q, want %q", st.State, StateUnloaded)
	}
	if st.MaxQueueDepth != defaultMaxQueueDepth {
		t.Errorf("MaxQueueDepth = %d, want %d", st.MaxQueueDepth, defaultMaxQueueDepth)
	}
}

func TestStatusReflectsActivity(t *testing.T) {
	sess := &fakeSession{fragments: []string{"hi<|eot_id|>"}}
	p, _ := testPipeline(t, sess, nil)

	if p.Ready() {
		t.Fatal("Ready before first load")
	}
	if _, err := p.GenerateText(context.Background(), types.GenerateRequest{Prompt: "x"}); err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if !p.Ready() {
		t.Fatal("not Ready after successful load")
	}
	st := p.Status()
	if st.GenerationsTotal != 1 {
		t.Errorf("GenerationsTotal = %d, want 1", st.GenerationsTotal)
	}
	if st.SessionTurns != 1 {
		t.Errorf("SessionTurns = %d, want 1", st.SessionTurns)
	}
	if !st.SessionEnabled {
		t.Error("SessionEnabled not reported")
	}
	if st.Model.ID != "llama3-test" {
		t.Errorf("Model.ID = %q", st.Model.ID)
	}
}

func TestCloseDrainsAndRejects(t *testing.T) {
	sess := &fakeSession{fragments: []string{"bye<|eot_id|>"}}
	p, _ := testPipeline(t, sess, nil)

	if _, err := p.GenerateText(context.Background(), types.GenerateRequest{Prompt: "x"}); err != nil {
		t.Fatalf("GenerateText: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	sess.mu.Lock()
	closed := sess.closed
	sess.mu.Unlock()
	if !closed {
		t.Fatal("engine session not closed")
	}

	_, err := p.Generate(context.Background(), types.GenerateRequest{Prompt: "x"})
	if !IsTooBusy(err) {
		t.Fatalf("Generate after Close = %v, want too-busy rejection", err)
	}

	// Idempotent.
	if err := p.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestCloseAwaitsInflight(t *testing.T) {
	gate := make(chan struct{})
	sess := &fakeSession{fragments: []string{"slow<|eot_id|>"}, gate: gate}
	p, _ := testPipeline(t, sess, nil)

	s, err := p.Generate(context.Background(), types.GenerateRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	closeErr := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		closeErr <- p.Close(ctx)
	}()

	select {
	case err := <-closeErr:
		t.Fatalf("Close returned %v before the in-flight generation finished", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	if text, err := s.Text(context.Background()); err != nil || text != "slow" {
		t.Fatalf("Text = (%q, %v)", text, err)
	}
	if err := <-closeErr; err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestCloseTimesOutOnStuckGeneration(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	sess := &fakeSession{fragments: []string{"x"}, gate: gate}
	p, _ := testPipeline(t, sess, nil)

	s, err := p.Generate(context.Background(), types.GenerateRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	defer s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := p.Close(ctx); err != context.DeadlineExceeded {
		t.Fatalf("Close = %v, want deadline exceeded", err)
	}
}
