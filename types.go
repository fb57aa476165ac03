// Package magtape implements the core of a multi-volume, incremental-capable
// tape backup engine: a drive abstraction, a navigator that lays out content
// and catalog on tape, a stream manager, a hash-protected catalog, and the
// backup/restore/verify/validate agents that drive them.
//
// This file holds the entities shared across every layer: FileDescriptor,
// FileInfo, the drive/media capability descriptors, and the navigator's
// content-set cursor.
package magtape

import (
	"strconv"
	"time"
)

// FileDescriptor is a semantic snapshot of a filesystem entry taken at
// backup time. It never holds a live handle on the underlying file --
// mutating a FileDescriptor never touches the filesystem.
type FileDescriptor struct {
	FullName     string
	Length       int64
	Attributes   FileAttr
	CreatedAt    time.Time
	LastModified time.Time
	LastAccessed time.Time
}

// FileInfoIDUnset is the reserved FileInfo.ID value meaning "not yet
// assigned"; FileInfo.Valid() is exactly id != FileInfoIDUnset.
const FileInfoIDUnset uint64 = 0

// FileInfo is one catalog row: a monotonically assigned identifier unique
// within the owning TOC, the starting logical block of its payload, the
// FileDescriptor snapshot, and an optional integrity digest.
type FileInfo struct {
	ID         uint64
	StartBlock uint64
	Descriptor FileDescriptor
	Hash       []byte
	hashAlgo   HashAlgorithm
}

// NewFileInfo constructs a FileInfo with an unset ID; callers assign one via
// TOC.NextID before appending it to a SetTOC.
func NewFileInfo(descriptor FileDescriptor, startBlock uint64) FileInfo {
	return FileInfo{
		ID:         FileInfoIDUnset,
		StartBlock: startBlock,
		Descriptor: descriptor,
	}
}

// Valid reports whether this FileInfo has been assigned a real ID.
func (fi *FileInfo) Valid() bool {
	return fi.ID != FileInfoIDUnset
}

// SetHash attaches a digest computed under the given algorithm. It panics if
// the digest length doesn't match what the algorithm produces -- this is a
// programmer error in the agent's hashing adapter, never a data-dependent
// condition.
func (fi *FileInfo) SetHash(algo HashAlgorithm, digest []byte) {
	if algo == HashNone {
		fi.Hash = nil
		fi.hashAlgo = HashNone
		return
	}
	if len(digest) != algo.DigestSize() {
		panic("magtape: digest length does not match hash algorithm")
	}
	fi.hashAlgo = algo
	fi.Hash = digest
}

// Algorithm returns the algorithm this FileInfo's Hash was computed
// under (HashNone if no hash is attached).
func (fi *FileInfo) Algorithm() HashAlgorithm {
	return fi.hashAlgo
}

// ApplyAlgorithm records which algorithm this FileInfo's digest (if any)
// was computed under. Unlike SetHash, it validates rather than panics,
// since a deserializer calls it on data read back from tape: a length
// mismatch here means the bytes on tape are corrupt, not a programmer
// error.
func (fi *FileInfo) ApplyAlgorithm(algo HashAlgorithm) error {
	if len(fi.Hash) != algo.DigestSize() {
		return errInvalidDigestLength
	}
	fi.hashAlgo = algo
	return nil
}

// DriveParams is the immutable, per-mount capability descriptor for a tape
// drive: what the hardware supports, independent of whatever medium happens
// to be loaded.
type DriveParams struct {
	MinBlockSize     uint32
	DefaultBlockSize uint32
	MaxBlockSize     uint32
	MaxPartitions    int
	SupportsSetMarks bool
	// SupportsSequentialFilemarkSpacing indicates the drive can space past
	// N filemarks at once without stopping at each one, which the Navigator
	// uses to decide between the two filemarks-based layouts.
	SupportsSequentialFilemarkSpacing bool
}

// CanPartition reports whether the drive can format more than one
// partition, a prerequisite for the TOC-in-partition Navigator variant.
func (p DriveParams) CanPartition() bool {
	return p.MaxPartitions >= 2
}

// ClampBlockSize clamps size to [MinBlockSize, MaxBlockSize], substituting
// DefaultBlockSize when size is 0.
func (p DriveParams) ClampBlockSize(size uint32) uint32 {
	if size == 0 {
		size = p.DefaultBlockSize
	}
	if size < p.MinBlockSize {
		return p.MinBlockSize
	}
	if size > p.MaxBlockSize {
		return p.MaxBlockSize
	}
	return size
}

// MediaParams is the mutable view of whatever medium is currently loaded.
type MediaParams struct {
	CapacityBytes  uint64
	RemainingBytes uint64
	BlockSize      uint32
	PartitionCount int
	WriteProtected bool
}

// ContentSetCursor is the Navigator's signed content-set position with dual
// indexing and two sentinel values, per the specification:
//
//   - 0, 1, 2, ...   count sets from the beginning
//   - -1             end of content area
//   - -2, -3, ...    count sets from the last one backwards
//   - CursorUnknown  position could not be determined
//   - CursorInTOC    currently positioned inside the TOC area
//
// The cursor never depends on knowing the total number of sets.
type ContentSetCursor int64

const (
	// CursorEndOfContent is the cursor value meaning "positioned at the end
	// of the content area" (about to write/read the next new set).
	CursorEndOfContent ContentSetCursor = -1
	// CursorUnknown means positioning failed or was never established.
	CursorUnknown ContentSetCursor = 1<<63 - 1
	// CursorInTOC means the Navigator is currently positioned in the TOC
	// area rather than the content area.
	CursorInTOC ContentSetCursor = 1<<63 - 2
)

func (c ContentSetCursor) String() string {
	switch c {
	case CursorUnknown:
		return "unknown"
	case CursorInTOC:
		return "in-toc"
	case CursorEndOfContent:
		return "end-of-content"
	default:
		return strconv.FormatInt(int64(c), 10)
	}
}
