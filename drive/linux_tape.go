//go:build linux

package drive

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/errors"
)

// mtop/mtget mirror struct mtop and struct mtget from linux/mtio.h. The
// x/sys/unix package doesn't export these (tape support is a narrow
// corner of the syscall surface), so the layout is reproduced here; the
// op codes and _IOW/_IOR-derived ioctl numbers below are otherwise fixed
// by the kernel ABI and don't vary across amd64/arm64.
type mtop struct {
	mtOp    int16
	_       [2]byte
	mtCount int32
}

type mtget struct {
	mtType   int64
	mtResid  int64
	mtDsreg  int64
	mtGstat  int64
	mtErreg  int64
	mtFileno int32
	mtBlkno  int32
}

const (
	mtioctop = 0x40086d01
	mtiocget = 0x80306d02
)

const (
	opFSF  = 1  // forward space over count filemarks
	opBSF  = 2  // backward space over count filemarks
	opFSR  = 3  // forward space over count records
	opBSR  = 4  // backward space over count records
	opWEOF = 5  // write count filemarks
	opREW  = 6  // rewind
	opOFFL = 7  // rewind and unload
	opNOP  = 8  // no-op, used to poll status
	opBSFM = 10 // backward space over count filemarks, then forward one record
	opFSFM = 11 // forward space over count filemarks, then backward one record
	opEOM  = 12 // space to end of recorded media
	opSETBLK = 20
	opSEEK   = 22
	opTELL   = 23
	opSETDRVBUFFER = 24
	opFSS    = 25 // forward space over count setmarks
	opBSS    = 26 // backward space over count setmarks
	opWSM    = 27 // write count setmarks
	opLOAD   = 30
	opUNLOAD = 31
	opCOMPRESSION = 32
	opSETPART = 33
	opMKPART  = 34
)

// GST_EOF/GST_EOD/GST_BOT etc are bits within mtget.mtGstat, per mtio.h,
// used to classify the outcome of a read/write that hit a mark.
const (
	gstEOF = 1 << 31
	gstBOT = 1 << 30
	gstEOT = 1 << 29
	gstEOD = 1 << 27
)

// linuxTapeDevice is the real RawDevice implementation, talking directly
// to a Linux st(4) device node (e.g. /dev/nst0) via ioctl(2) and
// read(2)/write(2). No retry logic lives here; that's Drive's job.
type linuxTapeDevice struct {
	fd int
}

// OpenLinuxDevice opens path (expected to be a non-rewind-on-close tape
// node such as /dev/nst0) for the Simulator's real-hardware counterpart.
// It is meant to be passed, partially applied, as the opener argument to
// drive.Open.
func OpenLinuxDevice(path string) (RawDevice, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, classifyOSError(err)
	}
	return &linuxTapeDevice{fd: fd}, nil
}

func (d *linuxTapeDevice) Close() error {
	return unix.Close(d.fd)
}

func (d *linuxTapeDevice) doOp(op int16, count int32) error {
	arg := mtop{mtOp: op, mtCount: count}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), uintptr(mtioctop), uintptr(unsafe.Pointer(&arg)))
	if errno != 0 {
		return classifyErrno(errno)
	}
	return nil
}

func (d *linuxTapeDevice) status() (mtget, error) {
	var g mtget
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), uintptr(mtiocget), uintptr(unsafe.Pointer(&g)))
	if errno != 0 {
		return mtget{}, classifyErrno(errno)
	}
	return g, nil
}

func (d *linuxTapeDevice) ReadBlock(buf []byte) (int, Outcome, error) {
	n, err := unix.Read(d.fd, buf)
	if err != nil {
		return 0, Outcome{}, classifyOSError(err)
	}
	if n == 0 {
		g, gerr := d.status()
		outcome := Outcome{Tapemark: true}
		if gerr == nil {
			outcome.EndOfMedia = g.mtGstat&gstEOD != 0 || g.mtGstat&gstEOT != 0
		}
		return 0, outcome, errors.ErrFilemark
	}
	return n, Outcome{}, nil
}

func (d *linuxTapeDevice) WriteBlock(buf []byte) (int, Outcome, error) {
	n, err := unix.Write(d.fd, buf)
	if err != nil {
		if err == unix.ENOSPC {
			return n, Outcome{EndOfMedia: true}, errors.ErrEndOfMedia
		}
		return n, Outcome{}, classifyOSError(err)
	}
	return n, Outcome{}, nil
}

func (d *linuxTapeDevice) Rewind() error { return d.doOp(opREW, 1) }

func (d *linuxTapeDevice) FastForwardToEnd(partition Partition) error {
	if err := d.MoveToPartition(partition); err != nil {
		return err
	}
	return d.doOp(opEOM, 1)
}

func (d *linuxTapeDevice) MoveToPartition(partition Partition) error {
	return d.doOp(opSETPART, int32(partition-1))
}

func (d *linuxTapeDevice) MoveToBlock(absoluteBlock uint64) error {
	return d.doOp(opSEEK, int32(absoluteBlock))
}

func (d *linuxTapeDevice) CurrentBlock() (uint64, error) {
	g, err := d.status()
	if err != nil {
		return 0, err
	}
	return uint64(g.mtBlkno), nil
}

func (d *linuxTapeDevice) MoveNextFilemark(count int) error {
	if count < 0 {
		return d.doOp(opBSF, int32(-count))
	}
	return d.doOp(opFSF, int32(count))
}

func (d *linuxTapeDevice) MoveNextSetmark(count int) error {
	if count < 0 {
		return d.doOp(opBSS, int32(-count))
	}
	return d.doOp(opFSS, int32(count))
}

func (d *linuxTapeDevice) MovePastSequentialFilemarks(count int) error {
	if count < 0 {
		return d.doOp(opBSFM, int32(-count))
	}
	return d.doOp(opFSFM, int32(count))
}

func (d *linuxTapeDevice) WriteFilemark(count int) error {
	return d.doOp(opWEOF, int32(count))
}

func (d *linuxTapeDevice) WriteSetmark(count int) error {
	return d.doOp(opWSM, int32(count))
}

// QueryDriveParams reports a conservative, widely-compatible capability
// set. Real per-model limits (exact min/max block size, partition count
// the drive firmware supports) live in the driveprofile lookup table,
// which callers should consult and feed into SetMediaBlockSize /
// FormatMedia rather than relying on these defaults alone.
func (d *linuxTapeDevice) QueryDriveParams() (magtape.DriveParams, error) {
	return magtape.DriveParams{
		MinBlockSize:                      1,
		DefaultBlockSize:                  65536,
		MaxBlockSize:                      1 << 20,
		MaxPartitions:                     2,
		SupportsSetMarks:                  true,
		SupportsSequentialFilemarkSpacing: true,
	}, nil
}

func (d *linuxTapeDevice) QueryMediaParams() (magtape.MediaParams, error) {
	g, err := d.status()
	if err != nil {
		return magtape.MediaParams{}, err
	}
	return magtape.MediaParams{
		BlockSize:      0, // unknown until SetMediaBlockSize is called in variable mode
		PartitionCount: 1,
		WriteProtected: g.mtGstat&(1<<26) != 0,
	}, nil
}

func (d *linuxTapeDevice) SetMediaBlockSize(size uint32) error {
	return d.doOp(opSETBLK, int32(size))
}

func (d *linuxTapeDevice) SetDriveOptions(opts DriveOptions) error {
	// TODO: MTSETDRVBUFFER option-bit encoding for ECC/compression/padding
	// varies enough across st(4) driver versions that it needs per-model
	// data from driveprofile; compression alone is safe to always drive
	// through MTCOMPRESSION.
	count := int32(0)
	if opts.EnableCompression {
		count = 1
	}
	return d.doOp(opCOMPRESSION, count)
}

func (d *linuxTapeDevice) LoadMedia() error {
	return d.doOp(opLOAD, 0)
}

func (d *linuxTapeDevice) UnloadMedia() error {
	return d.doOp(opOFFL, 0)
}

func (d *linuxTapeDevice) CreatePartitions(count int, initiatorSizeMiB int64) error {
	if count <= 1 {
		return d.doOp(opMKPART, 0)
	}
	return d.doOp(opMKPART, int32(initiatorSizeMiB))
}

func classifyOSError(err error) error {
	errno, ok := err.(unix.Errno)
	if !ok {
		return errors.ErrInvalidArg.WrapError(err)
	}
	return classifyErrno(errno)
}

func classifyErrno(errno unix.Errno) error {
	switch errno {
	case unix.EIO:
		return errors.ErrNotReady
	case unix.EBUSY:
		return errors.ErrBusReset
	case unix.EACCES, unix.EPERM:
		return errors.ErrPermission
	case unix.ENOMEDIUM, unix.ENXIO:
		return errors.ErrMediaChanged
	case unix.EINVAL:
		return errors.ErrInvalidArg
	case unix.ENOSYS, unix.EOPNOTSUPP:
		return errors.ErrNotSupported
	default:
		return errors.ErrInvalidArg.WrapError(errno)
	}
}
