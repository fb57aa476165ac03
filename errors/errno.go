// This file enumerates the error kinds a magtape component can raise, one
// sentinel TapeError per condition named in the specification's error
// taxonomy (transient, tapemark, invalid state, end of media, invalid data,
// not found, not supported, OS-level).

package errors

// Kind is a stable classification of a DriverError, independent of its
// human-readable message. Callers switch on Kind, never on Error() text.
type Kind int

const (
	// KindTransient covers bus reset, media changed, and not-ready
	// conditions. The drive retries these automatically; they should
	// essentially never surface past drive.Open/LoadMedia.
	KindTransient Kind = iota
	// KindTapemark covers filemark, setmark, end-of-media, no-data, and
	// handle-EOF kernel conditions normalized into (tapemark, eof) flags.
	KindTapemark
	// KindInvalidState covers an operation attempted from a Stream Manager
	// state that does not permit it.
	KindInvalidState
	// KindEndOfMedia covers the capacity guard refusing begin_write_file,
	// and drives multi-volume continuation.
	KindEndOfMedia
	// KindInvalidData covers signature/version/CRC/UID mismatches while
	// deserializing.
	KindInvalidData
	// KindNotFound covers a missing file or directory during restore or
	// filesystem traversal.
	KindNotFound
	// KindNotSupported covers a capability the mounted drive or media
	// lacks (e.g. partitions, setmarks).
	KindNotSupported
	// KindOS covers permission and invalid-handle failures from the
	// operating system; fatal for the whole session.
	KindOS
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindTapemark:
		return "tapemark"
	case KindInvalidState:
		return "invalid state"
	case KindEndOfMedia:
		return "end of media"
	case KindInvalidData:
		return "invalid data"
	case KindNotFound:
		return "not found"
	case KindNotSupported:
		return "not supported"
	case KindOS:
		return "os error"
	default:
		return "unknown"
	}
}

// TapeError is a sentinel error: comparable with ==, usable with
// errors.Is, and convertible to a richer DriverError via WithMessage or
// WrapError.
type TapeError struct {
	kind    Kind
	message string
}

func (e TapeError) Error() string { return e.message }
func (e TapeError) Kind() Kind    { return e.kind }

func (e TapeError) WithMessage(message string) DriverError {
	return customDriverError{
		kind:          e.kind,
		message:       message,
		originalError: e,
	}
}

func (e TapeError) WrapError(err error) DriverError {
	return customDriverError{
		kind:          e.kind,
		message:       e.message + ": " + err.Error(),
		originalError: err,
	}
}

func (e TapeError) Unwrap() error { return nil }

func newTapeError(kind Kind, message string) TapeError {
	return TapeError{kind: kind, message: message}
}

// Transient kernel conditions. Retried by drive.Open / drive.LoadMedia.
var (
	ErrBusReset     = newTapeError(KindTransient, "bus reset")
	ErrMediaChanged = newTapeError(KindTransient, "media changed")
	ErrNotReady     = newTapeError(KindTransient, "drive not ready")
)

// Tapemark / end-of-media conditions, normalized out-of-band into
// (tapemark, eof) flags by the drive; these values are also used directly
// when the caller needs to know which condition fired.
var (
	ErrFilemark  = newTapeError(KindTapemark, "filemark")
	ErrSetmark   = newTapeError(KindTapemark, "setmark")
	ErrNoData    = newTapeError(KindTapemark, "no data")
	ErrHandleEOF = newTapeError(KindTapemark, "handle at end of file")
)

// Fatal-for-the-operation conditions.
var (
	ErrInvalidState = newTapeError(KindInvalidState, "operation not valid in current state")
	ErrEndOfMedia   = newTapeError(KindEndOfMedia, "end of media")
	ErrInvalidData  = newTapeError(KindInvalidData, "invalid data: signature, version, CRC, or UID mismatch")
	ErrNotFound     = newTapeError(KindNotFound, "no such file or directory")
	ErrNotSupported = newTapeError(KindNotSupported, "operation not supported by this drive or media")
	ErrPermission   = newTapeError(KindOS, "permission denied")
	ErrInvalidArg   = newTapeError(KindOS, "invalid argument")
)

// IsTransient reports whether err (or anything it wraps) is one of the
// transient kernel conditions the drive's open/load retry policy handles.
func IsTransient(err error) bool {
	return hasKind(err, KindTransient)
}

// IsTapemark reports whether err (or anything it wraps) is one of the
// tapemark/end-of-media conditions classified from a kernel error.
func IsTapemark(err error) bool {
	return hasKind(err, KindTapemark)
}

// IsEndOfMedia reports whether err (or anything it wraps) is the capacity
// guard's end-of-media condition, the signal that a batch must stop and
// resume on the next volume.
func IsEndOfMedia(err error) bool {
	return hasKind(err, KindEndOfMedia)
}

func hasKind(err error, kind Kind) bool {
	for err != nil {
		if de, ok := err.(DriverError); ok {
			if de.Kind() == kind {
				return true
			}
			err = de.Unwrap()
			continue
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
