package navigator

import (
	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/drive"
)

// TOCFilemarksMarked is selected when the drive lacks setmarks and
// multiple partitions but can space past a run of consecutive filemarks
// in a single motion (MovePastSequentialFilemarks) and the caller has
// opted into using a TOC marker: [content][FM][gap][FM][FM][toc1][FM]
// [toc2][FM]. The gap file plus the doubled filemark after it forms a
// recognizable marker distinguishing "end of content" from an ordinary
// content-set separator.
type TOCFilemarksMarked struct {
	base
}

func NewTOCFilemarksMarked(drv *drive.Drive) *TOCFilemarksMarked {
	return &TOCFilemarksMarked{base: newBase(drv)}
}

func (v *TOCFilemarksMarked) MoveToBeginOfTOC() error {
	if err := v.fastForwardToContentEnd(contentPartition); err != nil {
		return err
	}
	// Hop over the gap-file marker run in one motion, landing at toc1.
	if err := v.drv.MovePastSequentialFilemarks(1); err != nil {
		v.cursor = magtape.CursorUnknown
		return err
	}
	v.cursor = magtape.CursorInTOC
	return nil
}

func (v *TOCFilemarksMarked) MoveToBeginOfContent() error {
	return v.rewindToContentStart(contentPartition)
}

func (v *TOCFilemarksMarked) MoveToEndOfContent() error {
	return v.fastForwardToContentEnd(contentPartition)
}

func (v *TOCFilemarksMarked) MoveToTargetContentSet(target magtape.ContentSetCursor) error {
	return v.moveToTargetContentSet(contentPartition, target)
}

// OnBeginWriteTOC writes the TOC mark -- a gap file followed by a doubled
// filemark -- before the caller starts writing the two TOC copies.
func (v *TOCFilemarksMarked) OnBeginWriteTOC() error {
	if err := v.MoveToBeginOfContentEndForMark(); err != nil {
		return err
	}
	if err := v.drv.WriteGapFile(); err != nil {
		v.cursor = magtape.CursorUnknown
		return err
	}
	if err := v.drv.WriteFilemark(2); err != nil {
		v.cursor = magtape.CursorUnknown
		return err
	}
	v.cursor = magtape.CursorInTOC
	return nil
}

// MoveToBeginOfContentEndForMark positions at the end of content, ready
// to append the gap marker; split out from OnBeginWriteTOC so it shares
// the same positioning code as MoveToBeginOfTOC's first step.
func (v *TOCFilemarksMarked) MoveToBeginOfContentEndForMark() error {
	return v.fastForwardToContentEnd(contentPartition)
}

func (v *TOCFilemarksMarked) OnBeginWriteContent() error {
	return nil
}

func (v *TOCFilemarksMarked) OnTOCWritten() error {
	v.markTOCWritten()
	return nil
}

func (v *TOCFilemarksMarked) OnContentWritten() error {
	v.markContentWritten()
	return nil
}

func (v *TOCFilemarksMarked) RemainingCapacity() (uint64, error) {
	media, err := v.drv.QueryMediaParams()
	if err != nil {
		return 0, err
	}
	if media.RemainingBytes <= reservedTOCCapacity {
		return 0, nil
	}
	return media.RemainingBytes - reservedTOCCapacity, nil
}
