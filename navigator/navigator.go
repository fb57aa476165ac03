// Package navigator translates the logical positioning events the stream
// manager issues (begin TOC read/write, begin/end content write, …) into
// physical tape moves. Four variants, selected once at mount time from the
// drive's capabilities, share a common cursor and capacity-accounting base
// the way a disk driver's per-filesystem implementations share a single
// low-level block layer.
package navigator

import (
	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/drive"
	"github.com/petrkotek/magtape/errors"
)

// reservedTOCCapacity is the default space set aside for an in-set TOC
// when reporting remaining capacity, so a caller doesn't fill the content
// area so full there's no room left to write the directory back.
const reservedTOCCapacity = 16 << 20

// Strategy is implemented by each of the four layout variants. The Stream
// Manager calls these notification methods at the points each method's
// comment names; Strategy implementations never touch the drive directly
// except through the embedded base's *drive.Drive.
type Strategy interface {
	// MoveToBeginOfTOC positions at the start of the TOC area. Idempotent.
	MoveToBeginOfTOC() error
	// MoveToBeginOfContent positions at the start of the content area.
	// Idempotent.
	MoveToBeginOfContent() error
	// MoveToEndOfContent positions just past the last content set.
	// Idempotent.
	MoveToEndOfContent() error
	// MoveToTargetContentSet positions at the start of content set
	// target, using whichever of (from beginning, from end, from current)
	// has the shortest traversal.
	MoveToTargetContentSet(target magtape.ContentSetCursor) error

	// OnBeginWriteTOC is called just before the stream manager starts
	// writing the TOC.
	OnBeginWriteTOC() error
	// OnBeginWriteContent is called just before content set writing
	// begins.
	OnBeginWriteContent() error
	// OnTOCWritten is called once the TOC has been fully written and
	// delimited.
	OnTOCWritten() error
	// OnContentWritten is called once a content set has been fully
	// written and delimited.
	OnContentWritten() error

	// RemainingCapacity reports usable bytes left for content, after any
	// reservation this variant holds back for its TOC.
	RemainingCapacity() (uint64, error)

	// Cursor reports the current Content-Set Cursor value.
	Cursor() magtape.ContentSetCursor

	// TOCInvalidated reports whether content has been written since the
	// TOC was last confirmed current.
	TOCInvalidated() bool

	// MarkEndOfContentWritten advances the cursor to CursorEndOfContent,
	// called by the stream manager once the closing set separator for
	// the set just finished has actually been written.
	MarkEndOfContentWritten()
}

// base is embedded by every variant: it owns the drive handle, the cursor,
// and the toc_invalidated flag, and implements the traversal-planning
// logic shared by all four layouts.
type base struct {
	drv             *drive.Drive
	cursor          magtape.ContentSetCursor
	tocInvalidated  bool
	knownSetCount   int64 // -1 if unknown
}

func newBase(drv *drive.Drive) base {
	return base{drv: drv, cursor: magtape.CursorUnknown, knownSetCount: -1}
}

func (b *base) Cursor() magtape.ContentSetCursor { return b.cursor }
func (b *base) TOCInvalidated() bool             { return b.tocInvalidated }

// MarkEndOfContentWritten implements Strategy.MarkEndOfContentWritten;
// identical across all four variants, so it lives on the shared base.
func (b *base) MarkEndOfContentWritten() { b.cursor = magtape.CursorEndOfContent }

// markContentWritten flips toc_invalidated on, per the specification:
// every variant that keeps the TOC alongside content does this on
// OnContentWritten.
func (b *base) markContentWritten() { b.tocInvalidated = true }

// markTOCWritten clears toc_invalidated, per the specification.
func (b *base) markTOCWritten() { b.tocInvalidated = false }

// rewindToContentStart rewinds to block 0 of the content partition and sets the
// cursor to 0 (beginning of content), or Unknown on failure.
func (b *base) rewindToContentStart(partition drive.Partition) error {
	if err := b.drv.MoveToPartition(partition); err != nil {
		b.cursor = magtape.CursorUnknown
		return err
	}
	if err := b.drv.Rewind(); err != nil {
		b.cursor = magtape.CursorUnknown
		return err
	}
	b.cursor = 0
	return nil
}

// fastForwardToContentEnd positions past the last content set and sets
// the cursor to CursorEndOfContent, or Unknown on failure.
func (b *base) fastForwardToContentEnd(partition drive.Partition) error {
	if err := b.drv.FastForwardToEnd(partition); err != nil {
		b.cursor = magtape.CursorUnknown
		return err
	}
	b.cursor = magtape.CursorEndOfContent
	return nil
}

// planTraversal chooses among three starting points -- beginning (0),
// end (negative distance), or the current cursor, when it is known and
// on the same side of the count as target -- the one with the smallest
// number of sets to move past, preserving sign to keep counting
// consistent with whichever reference point was cheapest.
//
// It returns the chosen starting point (0 for beginning, -1 meaning
// "from end", or the cursor's own position) and the signed count of sets
// to move from there.
func planTraversal(cursor magtape.ContentSetCursor, knownSetCount int64, target magtape.ContentSetCursor) (from magtape.ContentSetCursor, delta int64) {
	wantAbs := int64(target)
	if target < 0 && knownSetCount >= 0 {
		wantAbs = knownSetCount + int64(target)
	}

	distFromBeginning := wantAbs
	if distFromBeginning < 0 {
		distFromBeginning = 0
	}

	var distFromEnd int64 = 1 << 62
	if knownSetCount >= 0 {
		distFromEnd = knownSetCount - wantAbs
		if distFromEnd < 0 {
			distFromEnd = 0
		}
	}

	var distFromCurrent int64 = 1 << 62
	haveCurrent := cursor != magtape.CursorUnknown && cursor != magtape.CursorInTOC
	if haveCurrent {
		curAbs := int64(cursor)
		if cursor < 0 && knownSetCount >= 0 {
			curAbs = knownSetCount + int64(cursor)
		}
		if cursor == magtape.CursorEndOfContent && knownSetCount >= 0 {
			curAbs = knownSetCount
		}
		d := wantAbs - curAbs
		if d < 0 {
			d = -d
		}
		distFromCurrent = d
	}

	switch {
	case haveCurrent && distFromCurrent <= distFromBeginning && distFromCurrent <= distFromEnd:
		if cursor < 0 {
			return cursor, int64(target) - int64(cursor)
		}
		return cursor, wantAbs - int64(cursor)
	case distFromEnd < distFromBeginning:
		return magtape.CursorEndOfContent, -(knownSetCount - wantAbs)
	default:
		return 0, wantAbs
	}
}

// ErrCrossedIntoTOC is returned when a requested traversal would cross
// the end of the content area into the TOC, which the specification
// forbids.
var ErrCrossedIntoTOC = errors.ErrInvalidState.WithMessage("traversal would cross into TOC area")

// Select picks the layout variant for drv per the capability table: two
// partitions wins outright; then setmark support; then, if the drive can
// space past a run of consecutive filemarks in one motion and the caller
// has opted into useTOCMark, the marked-filemarks variant; otherwise the
// plain filemarks fallback.
func Select(drv *drive.Drive, useTOCMark bool) Strategy {
	switch {
	case drv.Params.CanPartition():
		return NewTOCPartition(drv)
	case drv.Params.SupportsSetMarks:
		return NewTOCSetmarks(drv)
	case drv.Params.SupportsSequentialFilemarkSpacing && useTOCMark:
		return NewTOCFilemarksMarked(drv)
	default:
		return NewTOCFilemarks(drv)
	}
}

// moveSets steps the drive by delta set-separators: setmarks where the
// drive supports them, filemarks otherwise (the emulation the
// specification calls for).
func (b *base) moveSets(delta int64) error {
	if delta == 0 {
		return nil
	}
	if b.drv.Params.SupportsSetMarks {
		return b.drv.MoveNextSetmark(int(delta))
	}
	return b.drv.MoveNextFilemark(int(delta))
}

// moveToTargetContentSet implements the shared traversal-planning
// contract for any variant whose sets live in a single contiguous
// content area addressed by set-separator marks.
func (b *base) moveToTargetContentSet(partition drive.Partition, target magtape.ContentSetCursor) error {
	if target == magtape.CursorInTOC {
		return ErrCrossedIntoTOC
	}

	from, delta := planTraversal(b.cursor, b.knownSetCount, target)

	if err := b.drv.MoveToPartition(partition); err != nil {
		b.cursor = magtape.CursorUnknown
		return err
	}

	switch from {
	case 0:
		if err := b.drv.Rewind(); err != nil {
			b.cursor = magtape.CursorUnknown
			return err
		}
	case magtape.CursorEndOfContent:
		if err := b.drv.FastForwardToEnd(partition); err != nil {
			b.cursor = magtape.CursorUnknown
			return err
		}
	default:
		// Already positioned at b.cursor; nothing to do before stepping.
	}

	if err := b.moveSets(delta); err != nil {
		if target == 0 && errors.IsTapemark(err) {
			// Hitting beginning-of-media while aiming for set 0 clears
			// the error per the specification's edge case.
			b.cursor = 0
			return nil
		}
		b.cursor = magtape.CursorUnknown
		return err
	}
	b.cursor = target
	return nil
}
