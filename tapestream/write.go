// Package tapestream implements magtape's byte-stream adapters over one
// drive plus a pooled streambuf.Buffer: a WriteStream and a ReadStream,
// each handling exactly one logical tape file at a time. Both are exposed
// as idiomatic io.Reader/io.Writer/io.Closer so the agents' hashing
// adapters and file-copy loops compose without bespoke wrappers.
package tapestream

import (
	"io"

	"github.com/petrkotek/magtape/streambuf"
)

// BlockDevice is the narrow slice of drive.Drive that a stream needs:
// whole-block reads and writes reporting the classified tapemark/
// end-of-media outcome.
type BlockDevice interface {
	WriteBlock(buf []byte) (n int, tapemark, endOfMedia bool, err error)
	ReadBlock(buf []byte) (n int, tapemark, endOfMedia bool, err error)
}

// WriteStream buffers caller writes and flushes whole blocks to dev,
// zero-padding a final partial block on Flush/Close. Its buffer is
// 2xblockSize, drawn from the shared streambuf.Pool.
type WriteStream struct {
	dev       BlockDevice
	blockSize int
	buf       *streambuf.Buffer

	// accumulator counts only bytes accepted from Write callers, never
	// bytes actually flushed (a zero-padded trailing block inflates what
	// hits the drive but must never inflate what the caller thinks it
	// wrote).
	accumulator int64

	closeNotify func() error
	closed      bool
	tapemarkHit bool
}

// NewWriteStream builds a WriteStream writing block-aligned data to dev.
// closeNotify, if non-nil, is called once by Close after the final flush
// -- the stream manager uses this to write the closing tapemark and
// release its single-outstanding-stream lock. Close itself returns the
// buffer to the pool.
func NewWriteStream(dev BlockDevice, blockSize int, closeNotify func() error) *WriteStream {
	return &WriteStream{
		dev:         dev,
		blockSize:   blockSize,
		buf:         streambuf.Global.Get(2 * blockSize),
		closeNotify: closeNotify,
	}
}

// BytesWritten returns the accumulator: bytes accepted from Write, not
// bytes physically flushed to the drive.
func (s *WriteStream) BytesWritten() int64 { return s.accumulator }

// TapemarkHitOnFlush reports whether the drive reported hitting a tapemark
// while this stream was flushing blocks, so the stream manager's caller
// knows not to write a redundant one when this stream closes.
func (s *WriteStream) TapemarkHitOnFlush() bool { return s.tapemarkHit }

// Write implements io.Writer per the specification's chunking rule: a
// full internal buffer is flushed as whole blocks first; an empty buffer
// receiving a chunk of at least one full buffer's worth bypasses the
// buffer and writes directly in whole blocks; anything else is copied
// into the buffer.
func (s *WriteStream) Write(p []byte) (int, error) {
	total := len(p)
	s.accumulator += int64(total)

	for len(p) > 0 {
		if s.buf.Full() {
			if err := s.flushWholeBlocks(); err != nil {
				return total - len(p), err
			}
		}
		if s.buf.Empty() && len(p) >= s.buf.Cap() {
			n, err := s.writeWholeBlocksDirect(p)
			p = p[n:]
			if err != nil {
				return total - len(p), err
			}
			continue
		}
		n, err := s.buf.FillFrom(byteSliceReader{&p}, min(len(p), s.buf.Free()))
		_ = n
		if err != nil {
			return total - len(p), err
		}
		if s.buf.Full() {
			if err := s.flushWholeBlocks(); err != nil {
				return total - len(p), err
			}
		}
	}
	return total, nil
}

// writeWholeBlocksDirect writes as many whole blocks from p directly to
// dev as fit, bypassing the internal buffer entirely.
func (s *WriteStream) writeWholeBlocksDirect(p []byte) (int, error) {
	whole := (len(p) / s.blockSize) * s.blockSize
	written := 0
	for written < whole {
		n, tapemark, _, err := s.dev.WriteBlock(p[written : written+s.blockSize])
		written += n
		if tapemark {
			s.tapemarkHit = true
		}
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// flushWholeBlocks writes every whole block currently buffered, leaving
// any partial remainder (< blockSize) in the buffer for the next fill.
func (s *WriteStream) flushWholeBlocks() error {
	for s.buf.Len() >= s.blockSize {
		block := s.buf.Peek()[:s.blockSize]
		n, tapemark, _, err := s.dev.WriteBlock(block)
		s.buf.Consume(n)
		if tapemark {
			s.tapemarkHit = true
		}
		if err != nil {
			return err
		}
		if n < s.blockSize {
			return io.ErrShortWrite
		}
	}
	return nil
}

// Flush writes every whole buffered block, then -- if a partial block
// remains -- zero-pads it to one full block and writes that too. Flush
// never touches the accumulator: it only ever moves bytes the caller
// already accounted for in Write, plus padding that was never "written"
// by the caller at all.
func (s *WriteStream) Flush() error {
	if err := s.flushWholeBlocks(); err != nil {
		return err
	}
	if s.buf.Len() == 0 {
		return nil
	}
	s.buf.ZeroPadToBlock(s.blockSize)
	return s.flushWholeBlocks()
}

// Close flushes any remaining buffered content, returns the buffer to the
// shared pool, and invokes closeNotify exactly once.
func (s *WriteStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.Flush()
	streambuf.Global.Put(s.buf)
	if s.closeNotify != nil {
		if notifyErr := s.closeNotify(); err == nil {
			err = notifyErr
		}
	}
	return err
}

// byteSliceReader adapts a *[]byte to io.Reader for FillFrom, advancing
// the slice header itself so FillFrom's caller sees consumed bytes
// disappear from the front without a separate copy.
type byteSliceReader struct {
	p *[]byte
}

func (r byteSliceReader) Read(dst []byte) (int, error) {
	n := copy(dst, *r.p)
	*r.p = (*r.p)[n:]
	return n, nil
}
