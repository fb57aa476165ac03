package drive

import (
	"time"

	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/errors"
)

// retryAttempts and retryPause implement the specification's retry policy:
// Open and LoadMedia retry transient errors (bus reset, media changed, not
// ready) up to this many times with this pause between attempts. No other
// operation retries.
const retryAttempts = 4

var retryPause = time.Second

// Drive is the portable, retry-and-error-tracking wrapper around a
// RawDevice. It owns the OS handle's lifetime (Open..Close), the
// cumulative byte counter, and the last/sticky error pair the
// specification requires.
type Drive struct {
	raw    RawDevice
	opener func() (RawDevice, error)

	Params      magtape.DriveParams
	Media       magtape.MediaParams
	BytesMoved  uint64
	Errors      errors.Tracker
}

// Open obtains a read/write handle via opener, retrying transient errors up
// to retryAttempts times, fills DriveParams, and applies the drive's
// optimal settings: ECC, compression, data padding, and setmark reporting
// when the drive supports them, with the EOT warning zone set to
// 4x the default block size.
func Open(opener func() (RawDevice, error)) (*Drive, error) {
	d := &Drive{opener: opener}

	raw, err := retryTransient(func() (RawDevice, error) {
		return opener()
	})
	if err != nil {
		d.Errors.Record(err)
		return nil, err
	}
	d.raw = raw

	params, err := raw.QueryDriveParams()
	if err != nil {
		d.Errors.Record(err)
		raw.Close()
		return nil, err
	}
	d.Params = params

	opts := DriveOptions{
		EnableECC:         true,
		EnableCompression: true,
		EnableDataPadding: true,
		ReportSetmarks:    params.SupportsSetMarks,
		EOTWarningBytes:   4 * params.DefaultBlockSize,
	}
	if err := raw.SetDriveOptions(opts); err != nil {
		d.Errors.Record(err)
		raw.Close()
		return nil, err
	}

	d.Errors.Record(nil)
	return d, nil
}

// Close releases the underlying OS handle.
func (d *Drive) Close() error {
	err := d.raw.Close()
	d.Errors.Record(err)
	return err
}

// LoadMedia prepares the currently inserted medium for use and fills
// MediaParams, retrying transient errors per the drive's retry policy.
func (d *Drive) LoadMedia() error {
	_, err := retryTransient(func() (struct{}, error) {
		return struct{}{}, d.raw.LoadMedia()
	})
	if err != nil {
		d.Errors.Record(err)
		return err
	}

	_, err = d.QueryMediaParams()
	return err
}

// QueryMediaParams refreshes and returns MediaParams, for callers (the
// Navigator's capacity accounting) that need RemainingBytes as it stands
// right now rather than the value cached at LoadMedia time.
func (d *Drive) QueryMediaParams() (magtape.MediaParams, error) {
	media, err := d.raw.QueryMediaParams()
	d.Errors.Record(err)
	if err != nil {
		return magtape.MediaParams{}, err
	}
	d.Media = media
	return media, nil
}

// UnloadMedia ejects the currently loaded medium.
func (d *Drive) UnloadMedia() error {
	err := d.raw.UnloadMedia()
	d.Errors.Record(err)
	return err
}

// FormatMedia creates partitions on blank media. When initiatorSizeMiB > 0
// and the drive both creates initiator partitions and supports multiple
// partitions, it creates two: an initiator partition of that size (which
// will hold the TOC) plus a content partition. Otherwise it creates a
// single partition using whatever method the drive supports. After
// formatting, media is reloaded and the optimal block size restored.
func (d *Drive) FormatMedia(initiatorSizeMiB int64) error {
	partitionCount := 1
	if initiatorSizeMiB > 0 && d.Params.CanPartition() {
		partitionCount = 2
	}

	if err := d.raw.CreatePartitions(partitionCount, initiatorSizeMiB); err != nil {
		d.Errors.Record(err)
		return err
	}

	if err := d.LoadMedia(); err != nil {
		return err
	}
	return d.SetBlockSize(d.Params.DefaultBlockSize)
}

// SetBlockSize clamps size to the drive's [min, max] range, substituting
// the default when size is 0, and applies it to the loaded medium.
func (d *Drive) SetBlockSize(size uint32) error {
	clamped := d.Params.ClampBlockSize(size)
	err := d.raw.SetMediaBlockSize(clamped)
	d.Errors.Record(err)
	if err == nil {
		d.Media.BlockSize = clamped
	}
	return err
}

// WriteBlock writes exactly one block's worth of bytes; the caller
// contract (enforced by the stream layer, never by Drive) is that buf is
// always block-aligned. The cumulative byte counter advances by the actual
// transferred count even on a partial/failed write.
func (d *Drive) WriteBlock(buf []byte) (n int, tapemark, endOfMedia bool, err error) {
	n, outcome, err := d.raw.WriteBlock(buf)
	d.BytesMoved += uint64(n)
	d.recordIOError(err, outcome)
	return n, outcome.Tapemark, outcome.EndOfMedia, err
}

// ReadBlock reads exactly one block's worth of bytes.
func (d *Drive) ReadBlock(buf []byte) (n int, tapemark, endOfMedia bool, err error) {
	n, outcome, err := d.raw.ReadBlock(buf)
	d.BytesMoved += uint64(n)
	d.recordIOError(err, outcome)
	return n, outcome.Tapemark, outcome.EndOfMedia, err
}

// recordIOError updates Errors after a block read or write. A call with no
// error records nil, which clears the last error. A pure tapemark hit
// (Tapemark set, EndOfMedia not) leaves the last error as it was; the
// (tapemark, eof) flags the caller receives carry that outcome. This
// includes a read whose only outcome was end-of-data: Outcome has no
// separate flag for it, so such a read does not clear the last error
// either. Any other error is recorded as the last error.
func (d *Drive) recordIOError(err error, outcome Outcome) {
	if err == nil {
		d.Errors.Record(nil)
		return
	}
	if outcome.Tapemark && !outcome.EndOfMedia {
		// A pure tapemark classification leaves Errors.Last() as-is; the
		// caller already has the outcome flags, which is the normative
		// signal here.
		return
	}
	d.Errors.Record(err)
}

// Rewind, FastForwardToEnd, MoveToPartition, MoveToBlock, CurrentBlock,
// MoveNextFilemark, MoveNextSetmark, MovePastSequentialFilemarks,
// WriteFilemark, and WriteSetmark forward directly to the RawDevice; none
// of the positioning primitives retry on failure.

func (d *Drive) Rewind() error {
	err := d.raw.Rewind()
	d.Errors.Record(err)
	return err
}

func (d *Drive) FastForwardToEnd(partition Partition) error {
	err := d.raw.FastForwardToEnd(partition)
	d.Errors.Record(err)
	return err
}

// MoveToPartition switches the active partition. Some drives require
// bouncing through partition 1 before any other partition is addressable,
// so when the target is not partition 1, this always visits partition 1
// first.
func (d *Drive) MoveToPartition(target Partition) error {
	if target > 1 {
		if err := d.raw.MoveToPartition(1); err != nil {
			d.Errors.Record(err)
			return err
		}
	}
	err := d.raw.MoveToPartition(target)
	d.Errors.Record(err)
	return err
}

func (d *Drive) MoveToBlock(absoluteBlock uint64) error {
	err := d.raw.MoveToBlock(absoluteBlock)
	d.Errors.Record(err)
	return err
}

func (d *Drive) CurrentBlock() (uint64, error) {
	block, err := d.raw.CurrentBlock()
	d.Errors.Record(err)
	return block, err
}

func (d *Drive) MoveNextFilemark(n int) error {
	err := d.raw.MoveNextFilemark(n)
	d.Errors.Record(err)
	return err
}

func (d *Drive) MoveNextSetmark(n int) error {
	err := d.raw.MoveNextSetmark(n)
	d.Errors.Record(err)
	return err
}

func (d *Drive) MovePastSequentialFilemarks(n int) error {
	err := d.raw.MovePastSequentialFilemarks(n)
	d.Errors.Record(err)
	return err
}

func (d *Drive) WriteFilemark(n int) error {
	err := d.raw.WriteFilemark(n)
	d.Errors.Record(err)
	return err
}

func (d *Drive) WriteSetmark(n int) error {
	if !d.Params.SupportsSetMarks {
		return errors.ErrNotSupported.WithMessage("drive does not support setmarks")
	}
	err := d.raw.WriteSetmark(n)
	d.Errors.Record(err)
	return err
}

// WriteGapFile writes max(MinBlockSize, 64) zero bytes as its own file
// (delimited by the caller's filemark calls), used by the filemarks-based
// Navigator variants to separate the content area from the TOC area.
func (d *Drive) WriteGapFile() error {
	size := d.Params.MinBlockSize
	if size < 64 {
		size = 64
	}
	buf := make([]byte, size)
	_, _, _, err := d.WriteBlock(buf)
	return err
}

func retryTransient[T any](op func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		v, err := op()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !errors.IsTransient(err) {
			return zero, err
		}
		if attempt < retryAttempts-1 {
			time.Sleep(retryPause)
		}
	}
	return zero, lastErr
}
