package navigator

import (
	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/drive"
)

// TOCSetmarks is the variant used when the drive supports setmarks but
// not multiple partitions: content sets are separated by setmarks in
// partition 1, followed directly by the two TOC copies (each its own
// filemark-delimited file): [set0][SM][set1][SM]…[setN][SM][toc1][FM]
// [toc2][FM].
type TOCSetmarks struct {
	base
}

func NewTOCSetmarks(drv *drive.Drive) *TOCSetmarks {
	return &TOCSetmarks{base: newBase(drv)}
}

func (v *TOCSetmarks) MoveToBeginOfTOC() error {
	if err := v.fastForwardToContentEnd(contentPartition); err != nil {
		return err
	}
	v.cursor = magtape.CursorInTOC
	return nil
}

func (v *TOCSetmarks) MoveToBeginOfContent() error {
	return v.rewindToContentStart(contentPartition)
}

func (v *TOCSetmarks) MoveToEndOfContent() error {
	return v.fastForwardToContentEnd(contentPartition)
}

func (v *TOCSetmarks) MoveToTargetContentSet(target magtape.ContentSetCursor) error {
	return v.moveToTargetContentSet(contentPartition, target)
}

func (v *TOCSetmarks) OnBeginWriteTOC() error {
	return v.MoveToBeginOfTOC()
}

func (v *TOCSetmarks) OnBeginWriteContent() error {
	return nil
}

func (v *TOCSetmarks) OnTOCWritten() error {
	v.markTOCWritten()
	return nil
}

// OnContentWritten invalidates the TOC: it's positioned right after
// content in the same partition, so appending a new set makes whatever
// TOC copies followed the old end of content stale.
func (v *TOCSetmarks) OnContentWritten() error {
	v.markContentWritten()
	return nil
}

// RemainingCapacity reserves space for the in-set TOC, since it shares
// the drive's overall capacity with content.
func (v *TOCSetmarks) RemainingCapacity() (uint64, error) {
	media, err := v.drv.QueryMediaParams()
	if err != nil {
		return 0, err
	}
	if media.RemainingBytes <= reservedTOCCapacity {
		return 0, nil
	}
	return media.RemainingBytes - reservedTOCCapacity, nil
}
