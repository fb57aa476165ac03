// Package wire implements magtape's on-tape binary codec: a little-endian,
// signature-tagged, versioned encoding for the primitive types and for the
// catalog's FileInfo/SetTOC/TOC structures.
//
// The format is fixed by the specification: a 2-byte magic (0x54 0x46,
// "TF"), a 16-bit version (0x0100), 32-bit length prefixes for strings and
// byte sequences (a negative length means "null"), 64-bit tick counts at
// 100ns resolution, and 32-bit element counts for lists.
package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// Signature is the 2-byte magic every self-describing object emits first.
var Signature = [2]byte{0x54, 0x46}

// Version is the current wire format version.
const Version uint16 = 0x0100

// ErrFormat is returned when a read completes but the bytes don't form a
// valid encoding -- a short read past the signature, a bad length prefix,
// or similar. It is distinct from a bad signature/version, which is
// reported as "absent" (ok=false, err=nil) rather than a hard error,
// per the specification's deserializer contract.
var ErrFormat = errors.New("wire: malformed encoding")

// Writer serializes primitives and catalog objects in magtape's wire
// format onto an underlying io.Writer.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w for serialization. Errors from individual Write* calls
// are sticky: once one fails, subsequent calls become no-ops and Err()
// keeps returning the first error, so callers can chain writes without
// checking every return value.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered by any Write* call, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(p)
}

// WriteSignature writes the 2-byte magic followed by the 2-byte version. Every
// self-describing object (FileInfo, SetTOC, TOC) must call this first.
func (w *Writer) WriteSignature() {
	w.write(Signature[:])
	w.WriteUint16(Version)
}

func (w *Writer) WriteUint8(v uint8)   { w.write([]byte{v}) }
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

func (w *Writer) WriteUint16(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	w.write(buf[:])
}

func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

func (w *Writer) WriteUint32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.write(buf[:])
}

func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteUint64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.write(buf[:])
}

// WriteTicks writes a timestamp as the 64-bit 100ns-tick count the
// specification requires.
func (w *Writer) WriteTicks(t Ticks) {
	w.WriteInt64(int64(t))
}

// WriteString writes a UTF-8 string prefixed by its 32-bit byte length.
func (w *Writer) WriteString(s string) {
	w.WriteInt32(int32(len(s)))
	w.write([]byte(s))
}

// WriteBytes writes a length-prefixed byte sequence. A nil slice is
// encoded as a negative length and no payload.
func (w *Writer) WriteBytes(b []byte) {
	if b == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteInt32(int32(len(b)))
	w.write(b)
}

// Reader deserializes magtape's wire format from an underlying io.Reader.
type Reader struct {
	r   io.Reader
	err error
}

// NewReader wraps r for deserialization. Like Writer, errors are sticky.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first error encountered by any Read* call, if any.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) read(p []byte) {
	if r.err != nil {
		return
	}
	_, err := io.ReadFull(r.r, p)
	if err != nil {
		r.err = ErrFormat
	}
}

// ReadSignature reads and validates the 2-byte magic and version. It
// returns ok=false (with no error) if the bytes are present but don't
// match -- the specification's "signature mismatch returns absent"
// contract -- and a non-nil error only on a genuine short read.
func (r *Reader) ReadSignature() (ok bool, err error) {
	var magic [2]byte
	r.read(magic[:])
	if r.err != nil {
		return false, r.err
	}
	version := r.ReadUint16()
	if r.err != nil {
		return false, r.err
	}
	if magic != Signature || version != Version {
		return false, nil
	}
	return true, nil
}

func (r *Reader) ReadUint8() uint8 {
	var buf [1]byte
	r.read(buf[:])
	return buf[0]
}

func (r *Reader) ReadBool() bool {
	return r.ReadUint8() != 0
}

func (r *Reader) ReadUint16() uint16 {
	var buf [2]byte
	r.read(buf[:])
	return binary.LittleEndian.Uint16(buf[:])
}

func (r *Reader) ReadInt32() int32 { return int32(r.ReadUint32()) }

func (r *Reader) ReadUint32() uint32 {
	var buf [4]byte
	r.read(buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}

func (r *Reader) ReadInt64() int64 { return int64(r.ReadUint64()) }

func (r *Reader) ReadUint64() uint64 {
	var buf [8]byte
	r.read(buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// ReadTicks reads a 100ns-tick timestamp.
func (r *Reader) ReadTicks() Ticks {
	return Ticks(r.ReadInt64())
}

// ReadString reads a length-prefixed UTF-8 string. A negative or
// absurdly large length is reported via Err() as ErrFormat.
func (r *Reader) ReadString() string {
	n := r.ReadInt32()
	if r.err != nil {
		return ""
	}
	if n < 0 {
		r.err = ErrFormat
		return ""
	}
	buf := make([]byte, n)
	r.read(buf)
	return string(buf)
}

// ReadBytes reads a length-prefixed byte sequence; a negative length
// decodes to a nil slice (the wire representation of "null").
func (r *Reader) ReadBytes() []byte {
	n := r.ReadInt32()
	if r.err != nil {
		return nil
	}
	if n < 0 {
		return nil
	}
	buf := make([]byte, n)
	r.read(buf)
	return buf
}
