package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"promptd/pkg/types"
)

// Pipeline fronts one engine instance with the streaming generation core.
// The engine and its context are exclusively owned by the pipeline and
// accessed only under the admission slot.
type Pipeline struct {
	mu      sync.RWMutex
	cfg     Config
	state   State
	lastErr string
	engine  EngineSession

	session *SessionStore
	adapter EngineAdapter
	pub     EventPublisher

	// Queueing primitives
	genCh   chan struct{} // size 1: single in-flight generation
	queueCh chan struct{} // buffered: queue slots

	startTime   time.Time
	generations uint64
	abandoned   uint64
}

// Ready reports whether the engine has been loaded successfully.
func (p *Pipeline) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state == StateReady
}

// Session exposes the rolling conversation memory.
func (p *Pipeline) Session() *SessionStore { return p.session }

// SessionTurns returns a copy of the full session log, oldest first.
func (p *Pipeline) SessionTurns() []types.Turn { return p.session.Turns() }

// HistorySize reports the configured session window bound.
func (p *Pipeline) HistorySize() int { return p.cfg.HistorySize }

// Status builds a detailed status response for /status.
func (p *Pipeline) Status() types.StatusResponse {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return types.StatusResponse{
		State:            string(p.state),
		Model:            p.cfg.Model,
		Template:         string(p.cfg.Family),
		QueueLen:         len(p.queueCh),
		Inflight:         len(p.genCh),
		MaxQueueDepth:    cap(p.queueCh),
		SessionEnabled:   p.cfg.SessionEnabled,
		SessionTurns:     p.session.Len(),
		GenerationsTotal: p.generations,
		AbandonedTotal:   p.abandoned,
		LastError:        p.lastErr,
		UptimeSeconds:    int64(time.Since(p.startTime).Seconds()),
		ServerTimeUnix:   time.Now().Unix(),
	}
}

func (p *Pipeline) isDraining() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state == StateDraining
}

// ensureEngine lazily loads the model session on first use. Callers hold the
// admission slot, so loads never race each other.
func (p *Pipeline) ensureEngine(ctx context.Context) (EngineSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	eng, st := p.engine, p.state
	p.mu.RUnlock()
	if eng != nil && st == StateReady {
		return eng, nil
	}
	if st == StateDraining {
		return nil, tooBusyError{modelID: p.cfg.Model.ID}
	}

	p.mu.Lock()
	p.state = StateLoading
	p.lastErr = ""
	p.mu.Unlock()

	sess, err := p.adapter.Load(p.cfg.Model.Path, EngineConfig{
		CtxSize:   p.cfg.CtxSize,
		BatchSize: p.cfg.BatchSize,
		Threads:   p.cfg.Threads,
		GPULayers: p.cfg.GPULayers,
	})
	if err != nil {
		p.mu.Lock()
		p.state = StateError
		p.lastErr = err.Error()
		p.mu.Unlock()
		if IsEngineUnavailable(err) {
			return nil, err
		}
		return nil, fmt.Errorf("load model %s: %w", p.cfg.Model.ID, err)
	}

	p.mu.Lock()
	p.engine = sess
	p.state = StateReady
	p.mu.Unlock()
	p.pub.Publish(Event{Name: EventEngineLoad, ModelID: p.cfg.Model.ID, Fields: map[string]any{
		"path":    p.cfg.Model.Path,
		"ctx":     p.cfg.CtxSize,
		"threads": p.cfg.Threads,
	}})
	return sess, nil
}

// Close initiates a graceful drain: new work is rejected, the in-flight
// generation (if any) is awaited up to ctx's deadline, then the engine
// session is released.
func (p *Pipeline) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StateDraining {
		p.mu.Unlock()
		return nil
	}
	p.state = StateDraining
	eng := p.engine
	p.engine = nil
	p.mu.Unlock()

	select {
	case p.genCh <- struct{}{}:
		<-p.genCh
	case <-ctx.Done():
		return ctx.Err()
	}
	if eng != nil {
		return eng.Close()
	}
	return nil
}
