// Package drive implements the lowest layer of magtape: the drive
// abstraction. A RawDevice is the narrow, ioctl-shaped interface the
// specification's "External Interfaces" section names; Drive is the
// portable struct built on top of it that the rest of magtape (the
// Navigator, Tape Streams, Stream Manager) actually calls.
package drive

import (
	"io"

	"github.com/petrkotek/magtape"
)

// Partition identifies a tape partition; partition 1 is always the first
// (and, on single-partition media, only) one.
type Partition int

// RawDevice is the set of primitives a tape device driver must expose.
// Implementations: linuxTapeDevice (real /dev/nst{n} ioctls, Linux only)
// and the in-memory Simulator used by every test and by the fixture
// package.
type RawDevice interface {
	io.Closer

	// ReadBlock reads exactly one block's worth of bytes, or fewer at a
	// tapemark/end-of-media/EOF. It returns the number of bytes actually
	// transferred and the classified outcome.
	ReadBlock(buf []byte) (n int, outcome Outcome, err error)
	// WriteBlock writes exactly one block's worth of bytes.
	WriteBlock(buf []byte) (n int, outcome Outcome, err error)

	Rewind() error
	FastForwardToEnd(partition Partition) error
	MoveToPartition(partition Partition) error
	MoveToBlock(absoluteBlock uint64) error
	CurrentBlock() (uint64, error)
	MoveNextFilemark(count int) error
	MoveNextSetmark(count int) error
	MovePastSequentialFilemarks(count int) error
	WriteFilemark(count int) error
	WriteSetmark(count int) error

	QueryDriveParams() (magtape.DriveParams, error)
	QueryMediaParams() (magtape.MediaParams, error)
	SetMediaBlockSize(size uint32) error
	SetDriveOptions(opts DriveOptions) error

	LoadMedia() error
	UnloadMedia() error
	CreatePartitions(count int, initiatorSizeMiB int64) error
}

// Outcome classifies what happened on a ReadBlock/WriteBlock call, per the
// specification: tapemark covers filemark/setmark/end-of-media/no-data/
// handle-EOF; endOfMedia additionally flags physical end of tape.
type Outcome struct {
	Tapemark   bool
	EndOfMedia bool
}

// DriveOptions are the "optimal settings" the specification says Open
// applies: ECC, compression, data padding, setmark reporting, and the EOT
// warning zone size.
type DriveOptions struct {
	EnableECC         bool
	EnableCompression bool
	EnableDataPadding bool
	ReportSetmarks    bool
	EOTWarningBytes   uint32
}
