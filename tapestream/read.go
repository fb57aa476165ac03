package tapestream

import (
	"bytes"
	"io"

	"github.com/petrkotek/magtape/streambuf"
)

// filemarksBufferMultiplier is how much larger the read buffer is made
// when the Navigator's filemarks-mode is active, to amortize the cost of
// detecting a filemark over more bytes per drive call.
const filemarksBufferMultiplier = 4

// ReadStream buffers reads from dev in block_size chunks (or
// 4xblock_size in filemarks mode), with optional length limiting and
// text-mode EOF-on-NUL.
type ReadStream struct {
	dev       BlockDevice
	blockSize int
	buf       *streambuf.Buffer

	textMode bool
	eof      bool

	hasLimit  bool
	limit     int64
	delivered int64
}

// NewReadStream builds a ReadStream over dev. filemarksMode enlarges the
// internal buffer per the specification; textMode enables EOF-on-first-
// NUL-byte scanning.
func NewReadStream(dev BlockDevice, blockSize int, filemarksMode, textMode bool) *ReadStream {
	capacity := blockSize
	if filemarksMode {
		capacity = blockSize * filemarksBufferMultiplier
	}
	return &ReadStream{
		dev:       dev,
		blockSize: blockSize,
		buf:       streambuf.Global.Get(capacity),
		textMode:  textMode,
	}
}

// SetLengthLimit sets (or changes) the read length limit. Once a limit is
// set, a new value below the bytes already delivered is rejected -- it
// would make Length() lie about what the caller already consumed.
func (s *ReadStream) SetLengthLimit(n int64) error {
	if s.hasLimit && n < s.delivered {
		return errShrinkLimit
	}
	s.hasLimit = true
	s.limit = n
	return nil
}

// Length reports the configured limit, or -1 if none was set.
func (s *ReadStream) Length() int64 {
	if !s.hasLimit {
		return -1
	}
	return s.limit
}

// Delivered reports the total bytes handed back to the caller so far,
// the basis callers need when computing an absolute SetLengthLimit value
// after already having read some framing off the front of the stream.
func (s *ReadStream) Delivered() int64 {
	return s.delivered
}

// EOF reports whether the stream has delivered everything it will ever
// deliver (tapemark hit with an empty buffer, length limit reached, or a
// NUL byte found in text mode).
func (s *ReadStream) EOF() bool { return s.eof }

// Read implements io.Reader.
func (s *ReadStream) Read(dst []byte) (int, error) {
	if s.hasLimit {
		remaining := s.limit - s.delivered
		if remaining <= 0 {
			return 0, io.EOF
		}
		if int64(len(dst)) > remaining {
			dst = dst[:remaining]
		}
	}
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.read(dst)
	s.delivered += int64(n)
	return n, err
}

func (s *ReadStream) read(dst []byte) (int, error) {
	if s.buf.Empty() {
		// EOF is only checked while the buffer is empty -- buffered bytes
		// delivered after a tapemark hit are still returned to the
		// caller first.
		if s.eof {
			return 0, io.EOF
		}
		if len(dst) >= s.buf.Cap() {
			return s.readDirect(dst)
		}
		if err := s.refill(); err != nil {
			return 0, err
		}
		if s.buf.Empty() && s.eof {
			return 0, io.EOF
		}
	}

	n, _ := s.buf.SpillTo(sliceWriter{dst}, len(dst))
	return s.applyTextMode(dst[:n])
}

// readDirect bypasses the internal buffer, reading whole blocks straight
// into dst when the caller's request is at least one buffer's worth.
func (s *ReadStream) readDirect(dst []byte) (int, error) {
	whole := (len(dst) / s.blockSize) * s.blockSize
	read := 0
	for read < whole {
		n, tapemark, _, err := s.dev.ReadBlock(dst[read : read+s.blockSize])
		read += n
		if n == 0 {
			s.eof = true
		}
		if tapemark {
			s.eof = true
			err = nil // the outcome flag is the authoritative signal
		}
		if err != nil {
			return s.applyTextMode(dst[:read])
		}
		if s.eof {
			break
		}
	}
	return s.applyTextMode(dst[:read])
}

// refill reads exactly one block from dev into the internal buffer.
func (s *ReadStream) refill() error {
	block := make([]byte, s.blockSize)
	n, tapemark, _, err := s.dev.ReadBlock(block)
	if n == 0 {
		s.eof = true
	}
	if tapemark {
		s.eof = true
		err = nil
	}
	if n > 0 {
		s.buf.FillFrom(bytes.NewReader(block[:n]), n)
	}
	return err
}

// applyTextMode scans freshly delivered bytes for the first NUL byte; if
// found, it truncates the return count there, sets EOF, and discards
// whatever remains buffered (it will never be delivered).
func (s *ReadStream) applyTextMode(delivered []byte) (int, error) {
	if !s.textMode {
		if s.eof && len(delivered) == 0 {
			return 0, io.EOF
		}
		return len(delivered), nil
	}
	if idx := bytes.IndexByte(delivered, 0); idx >= 0 {
		s.eof = true
		s.buf.Reset()
		return idx, nil
	}
	if s.eof && len(delivered) == 0 {
		return 0, io.EOF
	}
	return len(delivered), nil
}

// Close returns the internal buffer to the shared pool.
func (s *ReadStream) Close() error {
	streambuf.Global.Put(s.buf)
	return nil
}

type sliceWriter struct{ dst []byte }

func (w sliceWriter) Write(p []byte) (int, error) {
	n := copy(w.dst, p)
	return n, nil
}

var errShrinkLimit = errLengthLimit("length limit cannot be lowered below bytes already delivered")

type errLengthLimit string

func (e errLengthLimit) Error() string { return string(e) }
