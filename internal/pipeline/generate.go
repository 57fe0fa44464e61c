package pipeline

import (
	"context"
	"errors"
	"strings"

	"promptd/internal/prompt"
	"promptd/pkg/types"
)

// resolved is one generation request after prompt assembly and defaulting.
type resolved struct {
	promptText string
	params     EngineParams
	stops      []string
	session    bool
	user       string
}

// resolve builds the prompt and applies config defaults. It runs before any
// lock is acquired: an unrecognized template family fails here with no
// partial work.
func (p *Pipeline) resolve(req types.GenerateRequest) (resolved, error) {
	family := p.cfg.Family
	if req.Template != "" {
		f, err := prompt.ParseFamily(req.Template)
		if err != nil {
			return resolved{}, err
		}
		family = f
	}
	system := p.cfg.SystemPrompt
	if req.System != "" {
		system = req.System
	}
	sessionOn := p.cfg.SessionEnabled
	if req.Session != nil {
		sessionOn = *req.Session
	}
	history := req.History
	if history == nil && sessionOn {
		history = p.session.RecentWindow(p.cfg.HistorySize)
	}
	promptText, err := prompt.Build(prompt.Spec{
		Family:  family,
		System:  system,
		User:    req.Prompt,
		History: history,
	})
	if err != nil {
		return resolved{}, err
	}

	stops := req.Stop
	if len(stops) == 0 {
		stops = p.cfg.Stop
	}
	if len(stops) == 0 {
		stops = prompt.DefaultStops(family)
	}

	params := EngineParams{
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: float32(p.cfg.Temperature),
		TopP:        float32(p.cfg.TopP),
		TopK:        p.cfg.TopK,
		Seed:        int(req.Seed),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		params.Temperature = float32(req.Temperature)
	}
	if req.TopP > 0 {
		params.TopP = float32(req.TopP)
	}
	if req.TopK > 0 {
		params.TopK = req.TopK
	}
	return resolved{
		promptText: promptText,
		params:     params,
		stops:      stops,
		session:    sessionOn,
		user:       req.Prompt,
	}, nil
}

// Generate starts one generation and returns its delta stream. The sequence:
// assemble the prompt (configuration errors surface before the lock), acquire
// the single-flight admission slot, lazily load the engine, then decode in a
// background goroutine that owns the slot until the stream ends.
func (p *Pipeline) Generate(ctx context.Context, req types.GenerateRequest) (*Stream, error) {
	r, err := p.resolve(req)
	if err != nil {
		return nil, err
	}
	release, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := p.ensureEngine(ctx)
	if err != nil {
		release()
		return nil, err
	}
	genCtx, cancel := context.WithCancel(ctx)
	s := newStream(cancel)
	p.pub.Publish(Event{Name: EventGenerateStart, ModelID: p.cfg.Model.ID})
	go p.run(genCtx, s, sess, r, release)
	return s, nil
}

// GenerateText runs a generation to completion and returns the cleaned text.
func (p *Pipeline) GenerateText(ctx context.Context, req types.GenerateRequest) (string, error) {
	s, err := p.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	defer s.Close()
	return s.Text(ctx)
}

// run drives one generation: engine fragments through the stop filter onto
// the stream. It owns the admission slot; session memory is updated inside
// this exclusive window, exactly once, and only on natural completion.
func (p *Pipeline) run(ctx context.Context, s *Stream, sess EngineSession, r resolved, release func()) {
	defer release()

	f := newStopFilter(r.stops, p.cfg.MaxOutputBytes)
	var out strings.Builder
	onToken := func(tok string) error {
		delta, done := f.feed(tok)
		if delta != "" {
			if err := s.send(ctx, delta); err != nil {
				return err
			}
			out.WriteString(delta)
		}
		if done {
			// Stop pulling further fragments from the engine.
			return errHalt
		}
		return nil
	}

	err := sess.Generate(ctx, r.promptText, r.params, onToken)
	if errors.Is(err, errHalt) {
		err = nil
	}
	if err == nil && !f.Done() {
		// Engine signaled natural end: the held bytes were never confirmed
		// to start a stop sequence, so they are legitimate output.
		if delta := f.finish(); delta != "" {
			if serr := s.send(ctx, delta); serr != nil {
				err = serr
			} else {
				out.WriteString(delta)
			}
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			p.mu.Lock()
			p.abandoned++
			p.mu.Unlock()
			p.pub.Publish(Event{Name: EventGenerateAbandoned, ModelID: p.cfg.Model.ID})
			s.fail(ctx.Err())
			return
		}
		derr := ErrDecode(err)
		p.mu.Lock()
		p.lastErr = derr.Error()
		p.mu.Unlock()
		p.pub.Publish(Event{Name: EventGenerateError, ModelID: p.cfg.Model.ID, Fields: map[string]any{"error": err.Error()}})
		s.fail(derr)
		return
	}

	text := out.String()
	if r.session {
		p.session.Append(types.Turn{User: r.user, Assistant: text})
		p.pub.Publish(Event{Name: EventSessionAppend, ModelID: p.cfg.Model.ID, Fields: map[string]any{"turns": p.session.Len()}})
	}
	p.mu.Lock()
	p.generations++
	p.mu.Unlock()
	p.pub.Publish(Event{Name: EventGenerateComplete, ModelID: p.cfg.Model.ID, Fields: map[string]any{
		"reason": f.Reason(),
		"bytes":  f.Emitted(),
	}})
	s.complete(text, f.Reason())
}
