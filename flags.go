package magtape

// FileAttr is a bitset of filesystem attributes captured in a FileDescriptor
// snapshot at backup time. Bit layout mirrors common DOS/POSIX attribute
// flags closely enough to round-trip through FAT- and POSIX-flavored
// filesystems without loss of the bits this package cares about.
type FileAttr uint32

const (
	FileAttrReadOnly FileAttr = 1 << iota
	FileAttrHidden
	FileAttrSystem
	FileAttrDirectory
	FileAttrArchive
	FileAttrSymlink
	// FileAttrCustomStart is the lowest bit free for caller-specific use;
	// drivers and agents never set or inspect bits at or above this one.
	FileAttrCustomStart
)

func (a FileAttr) IsReadOnly() bool  { return a&FileAttrReadOnly != 0 }
func (a FileAttr) IsHidden() bool    { return a&FileAttrHidden != 0 }
func (a FileAttr) IsSystem() bool    { return a&FileAttrSystem != 0 }
func (a FileAttr) IsDirectory() bool { return a&FileAttrDirectory != 0 }
func (a FileAttr) IsArchive() bool   { return a&FileAttrArchive != 0 }
func (a FileAttr) IsSymlink() bool   { return a&FileAttrSymlink != 0 }

// HashAlgorithm is the on-wire integer identifying which digest algorithm
// protects a set's file payloads. The TOC's own integrity hash is always
// CRC-64 regardless of this value; see wire.EncodeTOC.
type HashAlgorithm int32

const (
	HashNone HashAlgorithm = iota
	HashCRC32
	HashCRC64
	HashXxHash32
	HashXxHash3
	HashXxHash64
	HashXxHash128
)

func (h HashAlgorithm) String() string {
	switch h {
	case HashNone:
		return "none"
	case HashCRC32:
		return "crc32"
	case HashCRC64:
		return "crc64"
	case HashXxHash32:
		return "xxhash32"
	case HashXxHash3:
		return "xxhash3"
	case HashXxHash64:
		return "xxhash64"
	case HashXxHash128:
		return "xxhash128"
	default:
		return "unknown"
	}
}

// DigestSize returns the number of bytes a digest under this algorithm
// occupies, or 0 for HashNone (which never stores a digest at all).
func (h HashAlgorithm) DigestSize() int {
	switch h {
	case HashNone:
		return 0
	case HashCRC32, HashXxHash32:
		return 4
	case HashCRC64, HashXxHash64, HashXxHash3:
		return 8
	case HashXxHash128:
		return 16
	default:
		return 0
	}
}
