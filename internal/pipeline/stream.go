package pipeline

import (
	"context"
	"io"
	"sync"
)

// Stream is the caller-visible side of one in-flight generation. Deltas are
// delivered in engine order over an unbuffered channel: the engine does not
// run ahead of the consumer by more than one decode step.
//
// Ceasing to consume (Close, or abandoning with a canceled context) is the
// only cancellation mechanism; it does not preempt an already-initiated
// decode step, but no further steps are issued once observed.
type Stream struct {
	ch     chan string
	cancel context.CancelFunc
	once   sync.Once

	mu     sync.Mutex
	err    error
	text   string
	reason string
}

func newStream(cancel context.CancelFunc) *Stream {
	return &Stream{ch: make(chan string), cancel: cancel}
}

// Recv returns the next delta. It returns io.EOF after natural completion
// and the stream's error after a failure.
func (s *Stream) Recv(ctx context.Context) (string, error) {
	select {
	case d, ok := <-s.ch:
		if !ok {
			if err := s.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return d, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Text drains the stream and returns the full cleaned output.
func (s *Stream) Text(ctx context.Context) (string, error) {
	for {
		if _, err := s.Recv(ctx); err != nil {
			if err == io.EOF {
				return s.Content(), nil
			}
			return "", err
		}
	}
}

// Close abandons the stream. Safe to call multiple times and after
// completion; abandoning never updates session memory.
func (s *Stream) Close() {
	s.once.Do(s.cancel)
}

// Content returns the final cleaned output once the stream has completed.
func (s *Stream) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// FinishReason reports why the stream completed ("stop", "eos", "length").
func (s *Stream) FinishReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Err returns the terminal error, if any.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// send delivers one delta, giving up when the generation context ends.
func (s *Stream) send(ctx context.Context, delta string) error {
	select {
	case s.ch <- delta:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// complete marks natural completion and wakes the consumer.
func (s *Stream) complete(text, reason string) {
	s.mu.Lock()
	s.text, s.reason = text, reason
	s.mu.Unlock()
	close(s.ch)
}

// fail terminates the stream with err; any held filter state is discarded.
func (s *Stream) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.ch)
}
