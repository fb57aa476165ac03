package wire

import (
	"bytes"
	"hash/crc64"
	"io"

	"github.com/petrkotek/magtape"
)

// crc64Table is the ECMA polynomial table hash/crc64 ships with; the
// specification fixes TOC integrity to CRC-64 regardless of the set's own
// file-hash algorithm, so this is the one place in the codebase a CRC-64
// table is needed and the stdlib implementation is all that's required.
var crc64Table = crc64.MakeTable(crc64.ECMA)

// EncodeTOC serializes t and appends an 8-byte little-endian CRC-64 of the
// serialized payload, producing the bytes for exactly one of the two
// back-to-back TOC copies the specification requires.
func EncodeTOC(t *magtape.TOC) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteTOC(t)
	if w.Err() != nil {
		return nil, w.Err()
	}

	payload := buf.Bytes()
	checksum := crc64.Checksum(payload, crc64Table)

	var out bytes.Buffer
	out.Write(payload)
	cw := NewWriter(&out)
	cw.WriteUint64(checksum)
	return out.Bytes(), nil
}

// DecodeTOC validates the trailing CRC-64 and, if it matches, deserializes
// the TOC. It returns ok=false (no error) for a short buffer, a bad
// signature/version, or a checksum mismatch -- all are "this copy is bad,
// try the next one" outcomes from the caller's perspective.
func DecodeTOC(data []byte) (t *magtape.TOC, ok bool, err error) {
	if len(data) < 8 {
		return nil, false, nil
	}
	payload := data[:len(data)-8]
	wantChecksum := crc64.Checksum(payload, crc64Table)

	r := NewReader(bytes.NewReader(data[len(data)-8:]))
	gotChecksum := r.ReadUint64()
	if r.Err() != nil || gotChecksum != wantChecksum {
		return nil, false, nil
	}

	return NewReader(bytes.NewReader(payload)).ReadTOC()
}

// DecodeTOCStream deserializes a TOC directly off r without knowing its
// encoded length in advance. A tape copy is followed by drive padding out
// to the next block boundary before its closing filemark, so a reader
// that doesn't know where the real payload ends can't trim a trailing
// checksum the way DecodeTOC does from a fully-buffered copy. Instead the
// CRC-64 is accumulated incrementally over exactly the bytes ReadTOC
// consumes, and the 8-byte checksum is read immediately afterward from
// the same r -- the padding beyond that point is simply never read.
func DecodeTOCStream(r io.Reader) (t *magtape.TOC, ok bool, err error) {
	h := crc64.New(crc64Table)
	t, ok, err = NewReader(io.TeeReader(r, h)).ReadTOC()
	if err != nil || !ok {
		return nil, ok, err
	}

	checksumReader := NewReader(r)
	gotChecksum := checksumReader.ReadUint64()
	if checksumReader.Err() != nil || gotChecksum != h.Sum64() {
		return nil, false, nil
	}
	return t, true, nil
}
