package drive

import (
	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/errors"
)

// recordKind classifies one entry in a Simulator partition's tape image.
type recordKind int

const (
	recordData recordKind = iota
	recordFilemark
	recordSetmark
)

type record struct {
	kind recordKind
	data []byte
}

// simPartition is one partition's worth of tape image: an ordered record
// log plus the read/write cursor into it.
type simPartition struct {
	records []record
	pos     int
}

// Simulator is an in-memory RawDevice: every partition is a slice of
// records (data blocks, filemarks, setmarks) with a read/write position
// into it. It exists so every other magtape package, and the fixture
// package, can exercise Drive behavior without real hardware.
type Simulator struct {
	driveParams magtape.DriveParams
	capacity    uint64

	partitions []simPartition
	active     Partition
	blockSize  uint32
	writeProtected bool
	loaded     bool
	closed     bool
}

// NewSimulator builds a Simulator with the given drive capability profile
// and total media capacity in bytes. Media starts unloaded and must go
// through LoadMedia before use; LoadMedia gives blank media one empty
// partition, and CreatePartitions can lay out more.
func NewSimulator(params magtape.DriveParams, capacityBytes uint64) *Simulator {
	return &Simulator{
		driveParams: params,
		capacity:    capacityBytes,
		blockSize:   params.DefaultBlockSize,
	}
}

func (s *Simulator) Close() error {
	s.closed = true
	return nil
}

func (s *Simulator) part(p Partition) *simPartition {
	idx := int(p) - 1
	if idx < 0 {
		idx = 0
	}
	for idx >= len(s.partitions) {
		s.partitions = append(s.partitions, simPartition{})
	}
	return &s.partitions[idx]
}

func (s *Simulator) current() *simPartition {
	return s.part(s.active)
}

func (s *Simulator) usedBytes() uint64 {
	var used uint64
	for _, p := range s.partitions {
		for _, r := range p.records {
			used += uint64(len(r.data))
		}
	}
	return used
}

func (s *Simulator) ReadBlock(buf []byte) (int, Outcome, error) {
	cur := s.current()
	if cur.pos >= len(cur.records) {
		return 0, Outcome{Tapemark: true}, errors.ErrNoData
	}
	rec := cur.records[cur.pos]
	switch rec.kind {
	case recordFilemark:
		cur.pos++
		return 0, Outcome{Tapemark: true}, errors.ErrFilemark
	case recordSetmark:
		cur.pos++
		return 0, Outcome{Tapemark: true}, errors.ErrSetmark
	default:
		n := copy(buf, rec.data)
		cur.pos++
		return n, Outcome{}, nil
	}
}

func (s *Simulator) WriteBlock(buf []byte) (int, Outcome, error) {
	if s.writeProtected {
		return 0, Outcome{}, errors.ErrPermission
	}
	if s.usedBytes()+uint64(len(buf)) > s.capacity {
		return 0, Outcome{EndOfMedia: true}, errors.ErrEndOfMedia
	}
	cur := s.current()
	payload := make([]byte, len(buf))
	copy(payload, buf)
	cur.records = append(cur.records[:cur.pos], record{kind: recordData, data: payload})
	cur.pos++
	return len(buf), Outcome{}, nil
}

func (s *Simulator) Rewind() error {
	s.current().pos = 0
	return nil
}

func (s *Simulator) FastForwardToEnd(partition Partition) error {
	p := s.part(partition)
	p.pos = len(p.records)
	return nil
}

func (s *Simulator) MoveToPartition(partition Partition) error {
	if int(partition)-1 >= s.driveParams.MaxPartitions {
		return errors.ErrNotSupported.WithMessage("partition out of range")
	}
	s.active = partition
	s.part(partition)
	return nil
}

func (s *Simulator) MoveToBlock(absoluteBlock uint64) error {
	cur := s.current()
	if int(absoluteBlock) > len(cur.records) {
		return errors.ErrInvalidArg.WithMessage("block position past end of partition")
	}
	cur.pos = int(absoluteBlock)
	return nil
}

func (s *Simulator) CurrentBlock() (uint64, error) {
	return uint64(s.current().pos), nil
}

func (s *Simulator) moveMark(n int, kind recordKind, miss errors.DriverError) error {
	cur := s.current()
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	for i := 0; i < n; i++ {
		for {
			if step > 0 && cur.pos < len(cur.records) && cur.records[cur.pos].kind == kind {
				// Forward spacing ends just past the mark.
				cur.pos++
				break
			}
			cur.pos += step
			if cur.pos < 0 || cur.pos > len(cur.records) {
				cur.pos = clampPos(cur.pos, len(cur.records))
				return miss
			}
			if cur.pos == len(cur.records) {
				return errors.ErrNoData
			}
			// Backward spacing ends just before the mark.
			if step < 0 && cur.records[cur.pos].kind == kind {
				break
			}
		}
	}
	return nil
}

func clampPos(pos, length int) int {
	if pos < 0 {
		return 0
	}
	if pos > length {
		return length
	}
	return pos
}

func (s *Simulator) MoveNextFilemark(count int) error {
	return s.moveMark(count, recordFilemark, errors.ErrFilemark)
}

func (s *Simulator) MoveNextSetmark(count int) error {
	return s.moveMark(count, recordSetmark, errors.ErrSetmark)
}

// MovePastSequentialFilemarks advances past a contiguous run of filemarks
// in one motion, stopping just past the last one in the run (or at most
// count filemarks, whichever comes first).
func (s *Simulator) MovePastSequentialFilemarks(count int) error {
	cur := s.current()
	step := 1
	remaining := count
	if count < 0 {
		step = -1
		remaining = -count
	}
	moved := 0
	for moved < remaining {
		next := cur.pos + step
		passed := cur.pos // the record a forward move passes over
		if step < 0 {
			passed = next
		}
		if passed < 0 || passed >= len(cur.records) || cur.records[passed].kind != recordFilemark {
			break
		}
		cur.pos = next
		moved++
	}
	if moved == 0 {
		return errors.ErrNoData
	}
	return nil
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i >= length {
		return length - 1
	}
	return i
}

func (s *Simulator) WriteFilemark(count int) error {
	return s.writeMark(count, recordFilemark)
}

func (s *Simulator) WriteSetmark(count int) error {
	return s.writeMark(count, recordSetmark)
}

func (s *Simulator) writeMark(count int, kind recordKind) error {
	cur := s.current()
	for i := 0; i < count; i++ {
		cur.records = append(cur.records[:cur.pos], record{kind: kind})
		cur.pos++
	}
	return nil
}

func (s *Simulator) QueryDriveParams() (magtape.DriveParams, error) {
	return s.driveParams, nil
}

func (s *Simulator) QueryMediaParams() (magtape.MediaParams, error) {
	if !s.loaded {
		return magtape.MediaParams{}, errors.ErrNotReady
	}
	used := s.usedBytes()
	remaining := uint64(0)
	if s.capacity > used {
		remaining = s.capacity - used
	}
	return magtape.MediaParams{
		CapacityBytes:  s.capacity,
		RemainingBytes: remaining,
		BlockSize:      s.blockSize,
		PartitionCount: len(s.partitions),
		WriteProtected: s.writeProtected,
	}, nil
}

func (s *Simulator) SetMediaBlockSize(size uint32) error {
	s.blockSize = size
	return nil
}

func (s *Simulator) SetDriveOptions(opts DriveOptions) error {
	return nil
}

func (s *Simulator) LoadMedia() error {
	s.loaded = true
	if len(s.partitions) == 0 {
		s.partitions = []simPartition{{}}
	}
	s.active = 1
	return nil
}

func (s *Simulator) UnloadMedia() error {
	s.loaded = false
	return nil
}

// CreatePartitions resets the simulated medium to count blank partitions.
// initiatorSizeMiB is accepted for interface compatibility but the
// Simulator has no fixed-size-region concept: capacity is shared across
// all partitions via the overall usedBytes accounting.
func (s *Simulator) CreatePartitions(count int, initiatorSizeMiB int64) error {
	s.partitions = make([]simPartition, count)
	s.active = 1
	return nil
}

// SetWriteProtected marks the simulated medium read-only, for tests that
// exercise the write-protect error path.
func (s *Simulator) SetWriteProtected(protected bool) {
	s.writeProtected = protected
}
