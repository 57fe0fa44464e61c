// Package pipeline provides the streaming generation core: prompt assembly,
// admission, stop-sequence filtering, and rolling session memory in front of
// a single local text-generation engine. It is structured into small files by
// concern:
//
//   - pipeline.go: core Pipeline type, constructor, status reporting, Close.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - types.go: internal state types (State).
//   - errors.go: error types and helpers (IsTooBusy, IsDecode, ...).
//   - admission.go: FIFO queueing and single in-flight generation admission.
//   - engine.go: EngineAdapter/EngineSession boundary to the model runtime.
//   - stopfilter.go: stop-sequence detection/buffering over raw fragments.
//   - session.go: append-only conversation memory with a bounded view.
//   - stream.go: caller-visible delta stream (incremental pull + drain).
//   - generate.go: orchestration of one generation end to end.
//   - infer.go: NDJSON streaming adapter used by the HTTP layer.
//   - events.go: lifecycle event publishing.
//
// Build tags and runtimes:
//
//   - In-process llama: uses the go-llama.cpp adapter, enabled with
//     `-tags=llama` (adapter_llama.go, llama_cgo.go). A no-CGO stub compiles
//     when the tag is not set (adapter_llama_stub.go), keeping default builds
//     and CI CGO-free; it refuses to generate rather than mock output.
//
// The engine is treated as a stateful, non-reentrant resource: admission
// guarantees at most one generation is in flight per Pipeline, queued callers
// proceed in FIFO order, and output streams never interleave.
package pipeline
