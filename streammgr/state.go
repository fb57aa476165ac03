// Package streammgr implements the stream manager (C5): the state machine
// that serializes a tape session into disjoint read/write phases and
// issues bounded byte streams for the caller to use during each one.
package streammgr

import "github.com/petrkotek/magtape/errors"

// State is one node of the stream manager's state machine.
type State int

const (
	StateNotInitialized State = iota
	StateOpen
	StateMediaLoaded
	StateMediaPrepared
	StateReadingTOC
	StateWritingTOC
	StateReadingContent
	StateWritingContent
)

func (s State) String() string {
	switch s {
	case StateNotInitialized:
		return "not-initialized"
	case StateOpen:
		return "open"
	case StateMediaLoaded:
		return "media-loaded"
	case StateMediaPrepared:
		return "media-prepared"
	case StateReadingTOC:
		return "reading-toc"
	case StateWritingTOC:
		return "writing-toc"
	case StateReadingContent:
		return "reading-content"
	case StateWritingContent:
		return "writing-content"
	default:
		return "unknown"
	}
}

// transitions is the static table of legal (from, to) pairs. ReadingTOC
// and ReadingContent may cross directly into any other R/W phase;
// WritingTOC and WritingContent may only return directly to
// MediaPrepared, per the specification.
var transitions = map[State]map[State]bool{
	StateNotInitialized: {StateOpen: true},
	StateOpen:           {StateMediaLoaded: true},
	StateMediaLoaded: {
		StateOpen:          true,
		StateMediaPrepared: true,
	},
	StateMediaPrepared: {
		StateMediaLoaded:     true,
		StateReadingTOC:      true,
		StateWritingTOC:      true,
		StateReadingContent:  true,
		StateWritingContent:  true,
	},
	StateReadingTOC: {
		StateMediaPrepared:  true,
		StateWritingTOC:     true,
		StateReadingContent: true,
		StateWritingContent: true,
	},
	StateWritingTOC: {
		StateMediaPrepared: true,
	},
	StateReadingContent: {
		StateMediaPrepared: true,
		StateReadingTOC:    true,
		StateWritingTOC:    true,
		StateWritingContent: true,
	},
	StateWritingContent: {
		StateMediaPrepared: true,
	},
}

// legal reports whether (from, to) appears in the allowed-transitions
// table.
func legal(from, to State) bool {
	return transitions[from][to]
}

var errIllegalTransition = errors.ErrInvalidState

// requireTransition returns an error unless (from, to) is a legal move.
func requireTransition(from, to State) error {
	if !legal(from, to) {
		return errIllegalTransition.WithMessage(
			"illegal stream manager transition: " + from.String() + " -> " + to.String())
	}
	return nil
}
