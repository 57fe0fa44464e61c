package pipeline

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ modelID string }

func (e tooBusyError) Error() string { return "too busy: " + e.modelID }

// ErrTooBusy constructs a tooBusyError for modelID.
func ErrTooBusy(modelID string) error { return tooBusyError{modelID: modelID} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}

// decodeError signals an engine-level failure during generation.
type decodeError struct{ err error }

func (e decodeError) Error() string { return "decode failed: " + e.err.Error() }
func (e decodeError) Unwrap() error { return e.err }

// ErrDecode wraps an engine failure surfaced mid-generation.
func ErrDecode(err error) error { return decodeError{err: err} }

// IsDecode reports whether err indicates an engine decode failure.
func IsDecode(err error) bool {
	_, ok := err.(decodeError)
	return ok
}

// engineUnavailableError signals a missing engine runtime (e.g., a binary
// built without the 'llama' tag) so the HTTP layer can return 503 instead
// of 500.
type engineUnavailableError struct{ msg string }

func (e engineUnavailableError) Error() string { return e.msg }

// ErrEngineUnavailable constructs an engineUnavailableError.
func ErrEngineUnavailable(msg string) error { return engineUnavailableError{msg: msg} }

// IsEngineUnavailable reports whether err indicates a missing/failed engine runtime.
func IsEngineUnavailable(err error) bool {
	_, ok := err.(engineUnavailableError)
	return ok
}
