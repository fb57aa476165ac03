package streammgr

import (
	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/drive"
	"github.com/petrkotek/magtape/errors"
	"github.com/petrkotek/magtape/navigator"
	"github.com/petrkotek/magtape/tapestream"
)

// TOCBlockSize is the specification's fixed block size for TOC I/O,
// independent of whatever block size the caller has configured for
// content.
const TOCBlockSize = 16 << 10

// streamKind identifies which of the four stream-issuance operations
// currently holds the single outstanding stream, so a second request can
// be rejected unless it matches the kind already in flight.
type streamKind int

const (
	streamNone streamKind = iota
	streamWriteTOC
	streamWriteContent
	streamReadTOC
	streamReadContent
)

// Manager implements the stream manager: it mediates every state
// transition, drives the Navigator at each phase boundary, and issues the
// bounded tapestream.ReadStream or tapestream.WriteStream the caller reads
// or writes through.
type Manager struct {
	drv *drive.Drive
	nav navigator.Strategy

	state            State
	byteCounter      uint64
	contentBlockSize uint32
	filemarksMode    bool
	useTOCMark       bool
	activeStream     streamKind
	contentSetOpen   bool
}

// New builds a Manager over an already-Open *drive.Drive, starting in
// StateNotInitialized.
func New(drv *drive.Drive) *Manager {
	return &Manager{drv: drv, state: StateNotInitialized}
}

// State reports the manager's current state.
func (m *Manager) State() State { return m.state }

// transition validates and applies from -> to, zeroing the byte counter
// as the specification requires on every R/W phase boundary.
func (m *Manager) transition(to State) error {
	if err := requireTransition(m.state, to); err != nil {
		return err
	}
	m.state = to
	m.byteCounter = 0
	return nil
}

// MarkOpen records that the underlying Drive has finished Open().
func (m *Manager) MarkOpen() error {
	return m.transition(StateOpen)
}

// LoadMedia prepares media on the Drive and moves to MediaLoaded.
func (m *Manager) LoadMedia() error {
	if err := m.drv.LoadMedia(); err != nil {
		return err
	}
	return m.transition(StateMediaLoaded)
}

// PrepareMedia selects the Navigator variant for the now-loaded media's
// capabilities and moves to MediaPrepared. useTOCMark is forwarded to
// navigator.Select per the specification's fourth-variant condition.
func (m *Manager) PrepareMedia(useTOCMark bool) error {
	m.useTOCMark = useTOCMark
	m.nav = navigator.Select(m.drv, useTOCMark)
	m.contentBlockSize = m.drv.Media.BlockSize
	return m.transition(StateMediaPrepared)
}

// Navigator exposes the selected strategy for callers (the backup agent)
// that need to inspect cursor state or remaining capacity directly.
func (m *Manager) Navigator() navigator.Strategy { return m.nav }

// SetContentParameters configures the block size and filemarks-mode the
// next content write uses. Per the specification the Navigator has final
// say on filemarks-mode; the caller should read back FilemarksMode() and
// normalize its SetTOC metadata to what actually happened.
func (m *Manager) SetContentParameters(blockSize uint32, filemarksMode bool) error {
	if err := m.drv.SetBlockSize(blockSize); err != nil {
		return err
	}
	m.contentBlockSize = m.drv.Media.BlockSize
	// Filemarks-mode is honored only on drives without setmark support;
	// with setmarks, sets are always separated by real setmarks.
	m.filemarksMode = filemarksMode && !m.drv.Params.SupportsSetMarks
	return nil
}

// FilemarksMode reports whatever filemarks-mode actually took effect
// after SetContentParameters, honoring the Navigator's final say.
func (m *Manager) FilemarksMode() bool { return m.filemarksMode }

// endCurrentPhase closes out whatever R/W phase is active before a new
// one begins, per the three-step begin protocol in the specification.
func (m *Manager) endCurrentPhase() error {
	switch m.state {
	case StateWritingContent:
		return m.EndWriteContentSet()
	case StateReadingContent:
		return m.EndReadContentSet()
	case StateWritingTOC, StateReadingTOC:
		// Nothing special closes out a TOC phase; the caller has already
		// written/read both copies.
		return nil
	}
	return nil
}

func (m *Manager) beginPhase(to State, positionCallback func() error) error {
	if m.activeStream != streamNone {
		return errors.ErrInvalidState.WithMessage("a stream is already outstanding")
	}
	if err := m.endCurrentPhase(); err != nil {
		return err
	}
	if err := positionCallback(); err != nil {
		return err
	}
	return m.transition(to)
}

// ProduceWriteTOCStream begins WritingTOC and returns a stream the
// caller writes one TOC copy through. TOC I/O always uses TOCBlockSize
// regardless of the content block size configured for this session.
func (m *Manager) ProduceWriteTOCStream() (*tapestream.WriteStream, error) {
	if m.state != StateWritingTOC {
		err := m.beginPhase(StateWritingTOC, func() error {
			if err := m.nav.OnBeginWriteTOC(); err != nil {
				return err
			}
			return m.drv.SetBlockSize(TOCBlockSize)
		})
		if err != nil {
			return nil, err
		}
	}
	m.activeStream = streamWriteTOC
	var ws *tapestream.WriteStream
	ws = tapestream.NewWriteStream(m.drv, TOCBlockSize, m.onStreamClosed(func() bool { return ws.TapemarkHitOnFlush() }))
	return ws, nil
}

// ProduceReadTOCStream begins ReadingTOC and returns a stream to read one
// TOC copy back.
func (m *Manager) ProduceReadTOCStream(textMode bool, limit int64) (*tapestream.ReadStream, error) {
	if m.state != StateReadingTOC {
		err := m.beginPhase(StateReadingTOC, func() error {
			if err := m.nav.MoveToBeginOfTOC(); err != nil {
				return err
			}
			return m.drv.SetBlockSize(TOCBlockSize)
		})
		if err != nil {
			return nil, err
		}
	}
	m.activeStream = streamReadTOC
	rs := tapestream.NewReadStream(m.drv, TOCBlockSize, false, textMode)
	if limit >= 0 {
		rs.SetLengthLimit(limit)
	}
	return rs, nil
}

// ProduceWriteContentStream begins (or continues, if a set is already
// open) WritingContent and returns a stream for one file's payload.
// length, if >= 0, is checked against the capacity guard before the
// stream is handed back.
func (m *Manager) ProduceWriteContentStream(length int64, userCap uint64) (*tapestream.WriteStream, error) {
	if m.state != StateWritingContent {
		err := m.beginPhase(StateWritingContent, func() error {
			return m.nav.OnBeginWriteContent()
		})
		if err != nil {
			return nil, err
		}
		m.contentSetOpen = true
	}
	if length >= 0 {
		remaining, err := m.nav.RemainingCapacity()
		if err != nil {
			return nil, err
		}
		var budget uint64
		if remaining > userCap {
			budget = remaining - userCap
		}
		if uint64(length) > budget {
			return nil, errors.ErrEndOfMedia
		}
	}
	m.activeStream = streamWriteContent
	var ws *tapestream.WriteStream
	ws = tapestream.NewWriteStream(m.drv, int(m.contentBlockSize), m.onStreamClosed(func() bool { return ws.TapemarkHitOnFlush() }))
	return ws, nil
}

// ProduceReadContentStream begins (or continues) ReadingContent and
// returns a stream for one file's payload.
func (m *Manager) ProduceReadContentStream(textMode bool, limit int64) (*tapestream.ReadStream, error) {
	if m.state != StateReadingContent {
		err := m.beginPhase(StateReadingContent, func() error {
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	m.activeStream = streamReadContent
	rs := tapestream.NewReadStream(m.drv, int(m.contentBlockSize), m.filemarksMode, textMode)
	if limit >= 0 {
		rs.SetLengthLimit(limit)
	}
	return rs, nil
}

// onStreamClosed returns the closeNotify callback a WriteStream invokes
// after its final flush: it writes the closing filemark for a file,
// unless tapemarkHit reports the drive already delivered one inline
// while flushing the stream's last block, and releases the
// single-outstanding-stream lock.
func (m *Manager) onStreamClosed(tapemarkHit func() bool) func() error {
	return func() error {
		m.activeStream = streamNone
		if tapemarkHit() {
			return nil
		}
		return m.drv.WriteFilemark(1)
	}
}

// EndWriteTOC notifies the Navigator that the TOC has been fully written
// -- both back-to-back copies, per the specification -- clearing the
// toc_invalidated flag the in-set variants set whenever content is
// written, and completes WritingTOC's only legal direct return, to
// MediaPrepared. Callers invoke this once after both copies have been
// written successfully, not after each individual copy.
func (m *Manager) EndWriteTOC() error {
	if err := m.nav.OnTOCWritten(); err != nil {
		return err
	}
	return m.transition(StateMediaPrepared)
}

// EndWriteContentSet closes the currently open set: writes the closing
// setmark (or emulated filemark), notifies the Navigator, and advances
// the cursor to end-of-content.
func (m *Manager) EndWriteContentSet() error {
	if !m.contentSetOpen {
		return nil
	}
	if m.drv.Params.SupportsSetMarks {
		if err := m.drv.WriteSetmark(1); err != nil {
			return err
		}
	} else {
		if err := m.drv.WriteFilemark(1); err != nil {
			return err
		}
	}
	m.contentSetOpen = false
	if err := m.nav.OnContentWritten(); err != nil {
		return err
	}
	m.nav.MarkEndOfContentWritten()
	// WritingContent may only return directly to MediaPrepared; ending
	// the set is what completes that return, per the state table.
	return m.transition(StateMediaPrepared)
}

// EndReadContentSet moves past one set separator (setmark, or emulated
// filemark). It does not update the Navigator's cursor.
func (m *Manager) EndReadContentSet() error {
	if m.drv.Params.SupportsSetMarks {
		return m.drv.MoveNextSetmark(1)
	}
	return m.drv.MoveNextFilemark(1)
}

// BeginWriteFile applies the capacity guard described by the
// specification directly, for callers that want to check before
// allocating a stream at all.
func (m *Manager) BeginWriteFile(length int64, userCap uint64) error {
	if m.state != StateWritingContent {
		return errors.ErrInvalidState
	}
	if length < 0 {
		return nil
	}
	remaining, err := m.nav.RemainingCapacity()
	if err != nil {
		return err
	}
	var budget uint64
	if remaining > userCap {
		budget = remaining - userCap
	}
	if uint64(length) > budget {
		return errors.ErrEndOfMedia
	}
	return nil
}

// MoveToTargetContentSet asks the Navigator to position at the given
// content set; used by restore/validate/verify to walk sets in any
// order their selection requires.
func (m *Manager) MoveToTargetContentSet(target magtape.ContentSetCursor) error {
	return m.nav.MoveToTargetContentSet(target)
}

// Cursor reports the Navigator's current content-set cursor.
func (m *Manager) Cursor() magtape.ContentSetCursor {
	if m.nav == nil {
		return magtape.CursorUnknown
	}
	return m.nav.Cursor()
}
