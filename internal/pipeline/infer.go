package pipeline

import (
	"context"
	"encoding/json"
	"io"

	"promptd/pkg/types"
)

// Infer streams one generation as NDJSON to w: a {"delta":...} line per
// cleaned fragment, then a final {"done":true,...} line. This is the push
// adapter over the same stream the pull API exposes.
func (p *Pipeline) Infer(ctx context.Context, req types.GenerateRequest, w io.Writer, flush func()) error {
	s, err := p.Generate(ctx, req)
	if err != nil {
		return err
	}
	defer s.Close()

	for {
		delta, err := s.Recv(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if _, e := w.Write(deltaLineJSON(delta)); e != nil {
			return e
		}
		if flush != nil {
			flush()
		}
	}

	end := map[string]any{
		"done":          true,
		"content":       s.Content(),
		"finish_reason": s.FinishReason(),
	}
	jb, _ := json.Marshal(end)
	if _, err := w.Write(append(jb, '\n')); err != nil {
		return err
	}
	if flush != nil {
		flush()
	}
	return nil
}

// deltaLineJSON formats a delta NDJSON line using json.Marshal for correctness.
func deltaLineJSON(delta string) []byte {
	type deltaMsg struct {
		Delta string `json:"delta"`
	}
	b, _ := json.Marshal(deltaMsg{Delta: delta})
	return append(b, '\n')
}
