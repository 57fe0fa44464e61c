package pipeline

import (
	"context"
	"time"
)

// begin reserves a queue slot and then the single in-flight slot. The engine
// context is mutated by every decode step, so exactly one generation may be
// in flight; queued callers proceed in FIFO order. Returns a release func to
// be deferred.
func (p *Pipeline) begin(ctx context.Context) (func(), error) {
	if p.isDraining() {
		// Reject new work to allow graceful shutdown.
		return func() {}, tooBusyError{modelID: p.cfg.Model.ID}
	}

	// Fast path: respect an already-canceled context.
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	// Try to reserve a queue slot with timeout.
	timer := time.NewTimer(p.cfg.MaxWait)
	defer timer.Stop()
	select {
	case p.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{modelID: p.cfg.Model.ID}
	}

	// Wait to acquire the single in-flight slot.
	acquired := false
	defer func() {
		if !acquired {
			<-p.queueCh
		}
	}()
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	timer2 := time.NewTimer(p.cfg.MaxWait)
	defer timer2.Stop()
	select {
	case p.genCh <- struct{}{}:
		acquired = true
		return func() { <-p.genCh; <-p.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer2.C:
		return func() {}, tooBusyError{modelID: p.cfg.Model.ID}
	}
}
