//go:build llama

package pipeline

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaAdapter loads models through the in-process go-llama.cpp bindings.
type llamaAdapter struct{}

func NewLlamaAdapter() EngineAdapter { return llamaAdapter{} }

// llamaSession owns the loaded model context.
type llamaSession struct {
	model   *llama.LLama
	threads int
}

func (llamaAdapter) Load(modelPath string, cfg EngineConfig) (EngineSession, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{
		llama.SetContext(cfg.CtxSize),
		llama.SetNBatch(cfg.BatchSize),
		llama.SetGPULayers(cfg.GPULayers),
	}
	m, err := llama.New(modelPath, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaSession{model: m, threads: cfg.Threads}, nil
}

func (s *llamaSession) Generate(ctx context.Context, prompt string, params EngineParams, onToken func(string) error) error {
	if s.model == nil {
		return errors.New("llama model not initialized")
	}

	// Bridge token streaming to onToken and respect cancellation. Stop
	// sequences are deliberately NOT handed to the backend: detection and
	// trimming is the stop filter's job so that matches split across
	// fragment boundaries are handled uniformly.
	var cbErr error
	s.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			cbErr = ctx.Err()
			return false
		default:
		}
		if err := onToken(tok); err != nil {
			cbErr = err
			return false
		}
		return true
	})
	po := predictOptions(params, s.threads)
	// Blocking until done or the callback returns false.
	_, err := s.model.Predict(prompt, po...)
	if cbErr != nil {
		return cbErr
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (s *llamaSession) Close() error {
	if s.model != nil {
		s.model.Free()
		s.model = nil
	}
	return nil
}

func pmax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
func pzn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
func pzf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// predictOptions converts per-call params into go-llama.cpp options.
func predictOptions(params EngineParams, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(pmax(1, params.MaxTokens)),
		llama.SetThreads(pmax(1, threads)),
		llama.SetTopP(pzf(params.TopP, llama.DefaultOptions.TopP)),
		llama.SetTopK(pzn(params.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(pzf(params.Temperature, llama.DefaultOptions.Temperature)),
	}
	if params.Seed != 0 {
		po = append(po, llama.SetSeed(params.Seed))
	}
	return po
}
