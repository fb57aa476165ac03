package agent

import (
	"encoding/binary"
	"hash"
	"hash/crc32"
	"hash/crc64"
	"io"

	"github.com/OneOfOne/xxhash"
	"github.com/petrkotek/magtape"
	"github.com/zeebo/xxh3"
)

// fileCRC64Table is a distinct CRC-64 table from the one wire.EncodeTOC
// uses for TOC integrity (ECMA): a file's own hash algorithm is a separate
// concern from the catalog's fixed integrity check, so it gets its own
// polynomial to avoid the two ever being read as interchangeable.
var fileCRC64Table = crc64.MakeTable(crc64.ISO)

// digester accumulates a file's payload as it streams through and
// produces a digest sized to magtape.HashAlgorithm.DigestSize(). It
// exists because the candidate libraries return 32-bit, 64-bit, and
// 128-bit sums through three different shapes (hash.Hash32, hash.Hash64,
// and zeebo/xxh3's own Sum128), which this normalizes to one shape the
// agent's per-file backup/restore paths can treat uniformly.
type digester interface {
	io.Writer
	Sum() []byte
}

type stdHashDigester struct{ hash.Hash }

func (d stdHashDigester) Sum() []byte { return d.Hash.Sum(nil) }

type xxh3Digester struct {
	h    *xxh3.Hasher
	wide bool
}

func (d *xxh3Digester) Write(p []byte) (int, error) { return d.h.Write(p) }

func (d *xxh3Digester) Sum() []byte {
	if !d.wide {
		out := make([]byte, 8)
		binary.BigEndian.PutUint64(out, d.h.Sum64())
		return out
	}
	u := d.h.Sum128()
	out := make([]byte, 16)
	binary.BigEndian.PutUint64(out[:8], u.Hi)
	binary.BigEndian.PutUint64(out[8:], u.Lo)
	return out
}

// newDigester returns the streaming digest accumulator for algo, or nil
// for magtape.HashNone (callers check the result for nil).
func newDigester(algo magtape.HashAlgorithm) digester {
	switch algo {
	case magtape.HashCRC32:
		return stdHashDigester{crc32.NewIEEE()}
	case magtape.HashCRC64:
		return stdHashDigester{crc64.New(fileCRC64Table)}
	case magtape.HashXxHash32:
		return stdHashDigester{xxhash.New32()}
	case magtape.HashXxHash64:
		return stdHashDigester{xxhash.New64()}
	case magtape.HashXxHash3:
		return &xxh3Digester{h: xxh3.New()}
	case magtape.HashXxHash128:
		return &xxh3Digester{h: xxh3.New(), wide: true}
	default:
		return nil
	}
}
