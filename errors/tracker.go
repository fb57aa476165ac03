package errors

// Tracker implements the Drive's two-field error memory from the
// specification: `last` is whatever the most recent operation returned;
// `sticky` is the most recent non-nil error seen before the latest success.
// LastSignificant returns `last` if it is non-nil, else falls back to
// `sticky` -- so a caller can tell "what actually went wrong most recently"
// even after an intervening operation succeeded.
type Tracker struct {
	last   error
	sticky error
}

// Record stores the outcome of an operation. A nil err means the operation
// succeeded: `last` is cleared, and if the previous `last` was non-nil it
// becomes the new `sticky`. A non-nil err is stored directly as `last`.
func (t *Tracker) Record(err error) {
	if err == nil {
		if t.last != nil {
			t.sticky = t.last
		}
		t.last = nil
		return
	}
	t.last = err
}

// Last returns the most recent error, or nil if the most recent operation
// succeeded.
func (t *Tracker) Last() error {
	return t.last
}

// Sticky returns the most recent non-nil error seen before the latest
// success, or nil if none has ever been recorded.
func (t *Tracker) Sticky() error {
	return t.sticky
}

// LastSignificant returns Last() if non-nil, otherwise Sticky().
func (t *Tracker) LastSignificant() error {
	if t.last != nil {
		return t.last
	}
	return t.sticky
}

// Reset clears only `last`, per the specification; `sticky` survives so
// LastSignificant keeps reporting the most recent real failure.
func (t *Tracker) Reset() {
	t.last = nil
}
