// Package streambuf implements magtape's fixed-capacity FIFO byte buffer:
// the shared plumbing between the drive's block-aligned I/O and the tape
// streams' caller-facing, arbitrarily-sized reads and writes.
//
// A Buffer never talks to the drive directly. Its FillFrom/SpillTo methods
// take the source/sink as arguments at call time -- plain closures over an
// io.Reader/io.Writer -- so the owning stream and the buffer never hold
// references to each other.
package streambuf

import (
	"io"

	"github.com/noxer/bytewriter"
)

// Buffer is a fixed-capacity byte FIFO: read <= write <= capacity always
// holds. Content between read and write is the buffered, not-yet-delivered
// data.
type Buffer struct {
	data  []byte
	read  int
	write int
}

// newRaw allocates a Buffer of the given capacity. Unexported: callers get
// buffers from the Pool so capacities are reused instead of allocated fresh
// on every stream open.
func newRaw(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Cap returns the buffer's fixed capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Len returns the number of unspilled bytes currently buffered.
func (b *Buffer) Len() int { return b.write - b.read }

// Free returns the number of bytes that can still be filled past the write
// cursor. It does not compact: room freed at the front by SpillTo is not
// counted.
func (b *Buffer) Free() int {
	return len(b.data) - b.write
}

// Full reports whether the buffer has no room left to fill without a spill.
func (b *Buffer) Full() bool {
	return b.write >= len(b.data)
}

// Empty reports whether the buffer holds no unspilled bytes.
func (b *Buffer) Empty() bool {
	return b.read >= b.write
}

// Reset discards any buffered content and returns both cursors to zero.
func (b *Buffer) Reset() {
	b.read = 0
	b.write = 0
}

// compact memmoves the unspilled tail down to offset 0, but only when the
// unused tail space is smaller than need -- an unconditional compaction on
// every call would turn every small write into an O(n) copy.
func (b *Buffer) compact(need int) {
	if b.Free() >= need {
		return
	}
	n := copy(b.data, b.data[b.read:b.write])
	b.read = 0
	b.write = n
}

// FillFrom reads up to n bytes from source into the buffer, compacting
// first if the free tail is smaller than n. It returns the number of bytes
// actually read (which may be less than n on a short read from source) and
// any error source returned.
func (b *Buffer) FillFrom(source io.Reader, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	b.compact(n)
	if b.Free() < n {
		n = b.Free()
	}
	if n <= 0 {
		return 0, nil
	}
	filled, err := io.ReadFull(source, b.data[b.write:b.write+n])
	b.write += filled
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return filled, err
}

// SpillTo writes up to n buffered bytes (FIFO order: the oldest-filled
// bytes first) to sink, advancing the read cursor by however much was
// actually written.
func (b *Buffer) SpillTo(sink io.Writer, n int) (int, error) {
	if n > b.Len() {
		n = b.Len()
	}
	if n <= 0 {
		return 0, nil
	}
	spilled, err := sink.Write(b.data[b.read : b.read+n])
	b.read += spilled
	return spilled, err
}

// Peek returns the unspilled content without consuming it, for callers
// (text-mode EOF scanning) that need to inspect bytes before deciding how
// much to spill.
func (b *Buffer) Peek() []byte {
	return b.data[b.read:b.write]
}

// Consume advances the read cursor by n without copying, for callers that
// scanned Peek() themselves (text-mode NUL detection) and already know how
// much to discard.
func (b *Buffer) Consume(n int) {
	b.read += n
	if b.read > b.write {
		b.read = b.write
	}
}

// ZeroPadToBlock zero-fills the buffer from the current write cursor up to
// the next multiple of blockSize, for the write stream's final partial-
// block flush. It returns the new total length (always a multiple of
// blockSize) and leaves the read cursor untouched so the padded bytes are
// delivered on the next SpillTo like any other buffered content.
func (b *Buffer) ZeroPadToBlock(blockSize int) int {
	if blockSize <= 0 {
		return b.write
	}
	remainder := b.write % blockSize
	if remainder == 0 {
		return b.write
	}
	padding := blockSize - remainder
	b.compact(padding)
	target := b.write + padding
	if target > len(b.data) {
		target = len(b.data)
	}

	w := bytewriter.New(b.data[b.write:target])
	zeros := make([]byte, target-b.write)
	w.Write(zeros)
	b.write = target
	return b.write
}
