package navigator

import (
	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/drive"
)

// TOCFilemarks is the fallback variant, used when the drive has neither
// multiple partitions nor setmark support: content sets are separated by
// filemarks (emulating setmarks) and the TOC is simply the last two
// files on the tape: [content][FM][toc1][FM][toc2][FM].
type TOCFilemarks struct {
	base
}

func NewTOCFilemarks(drv *drive.Drive) *TOCFilemarks {
	return &TOCFilemarks{base: newBase(drv)}
}

func (v *TOCFilemarks) MoveToBeginOfTOC() error {
	if err := v.fastForwardToContentEnd(contentPartition); err != nil {
		return err
	}
	v.cursor = magtape.CursorInTOC
	return nil
}

func (v *TOCFilemarks) MoveToBeginOfContent() error {
	return v.rewindToContentStart(contentPartition)
}

func (v *TOCFilemarks) MoveToEndOfContent() error {
	return v.fastForwardToContentEnd(contentPartition)
}

func (v *TOCFilemarks) MoveToTargetContentSet(target magtape.ContentSetCursor) error {
	return v.moveToTargetContentSet(contentPartition, target)
}

func (v *TOCFilemarks) OnBeginWriteTOC() error {
	return v.MoveToBeginOfTOC()
}

func (v *TOCFilemarks) OnBeginWriteContent() error {
	return nil
}

func (v *TOCFilemarks) OnTOCWritten() error {
	v.markTOCWritten()
	return nil
}

func (v *TOCFilemarks) OnContentWritten() error {
	v.markContentWritten()
	return nil
}

func (v *TOCFilemarks) RemainingCapacity() (uint64, error) {
	media, err := v.drv.QueryMediaParams()
	if err != nil {
		return 0, err
	}
	if media.RemainingBytes <= reservedTOCCapacity {
		return 0, nil
	}
	return media.RemainingBytes - reservedTOCCapacity, nil
}
