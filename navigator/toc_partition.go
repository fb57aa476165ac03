package navigator

import (
	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/drive"
)

// contentPartition and tocPartitionNum are fixed by the layout: content
// lives in partition 1, the TOC in partition 2.
const (
	contentPartition drive.Partition = 1
	tocPartitionNum  drive.Partition = 2
)

// TOCPartition is the variant used when the drive supports at least two
// partitions: content occupies partition 1 in its entirety, the TOC
// occupies partition 2 in its entirety. Since the TOC has its own
// partition, content written never invalidates it and the drive's
// reported remaining capacity needs no reservation.
type TOCPartition struct {
	base
}

// NewTOCPartition builds the TOC-in-partition strategy over drv, which
// must already have been formatted with two partitions.
func NewTOCPartition(drv *drive.Drive) *TOCPartition {
	return &TOCPartition{base: newBase(drv)}
}

func (v *TOCPartition) MoveToBeginOfTOC() error {
	if err := v.drv.MoveToPartition(tocPartitionNum); err != nil {
		v.cursor = magtape.CursorUnknown
		return err
	}
	if err := v.drv.Rewind(); err != nil {
		v.cursor = magtape.CursorUnknown
		return err
	}
	v.cursor = magtape.CursorInTOC
	return nil
}

func (v *TOCPartition) MoveToBeginOfContent() error {
	return v.rewindToContentStart(contentPartition)
}

func (v *TOCPartition) MoveToEndOfContent() error {
	return v.fastForwardToContentEnd(contentPartition)
}

func (v *TOCPartition) MoveToTargetContentSet(target magtape.ContentSetCursor) error {
	return v.moveToTargetContentSet(contentPartition, target)
}

// OnBeginWriteTOC positions at the start of the TOC partition, truncating
// whatever was there before (a fresh TOC write always starts from
// scratch in this variant -- there is no double-buffering need since the
// partition boundary already isolates the TOC from content corruption).
func (v *TOCPartition) OnBeginWriteTOC() error {
	return v.MoveToBeginOfTOC()
}

func (v *TOCPartition) OnBeginWriteContent() error {
	return nil
}

func (v *TOCPartition) OnTOCWritten() error {
	v.markTOCWritten()
	return nil
}

func (v *TOCPartition) OnContentWritten() error {
	// Content and TOC are in separate partitions; writing content never
	// invalidates an already-written TOC.
	return nil
}

func (v *TOCPartition) RemainingCapacity() (uint64, error) {
	media, err := v.drv.QueryMediaParams()
	if err != nil {
		return 0, err
	}
	return media.RemainingBytes, nil
}
