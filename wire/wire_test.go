package wire

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignature_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf).WriteSignature()

	ok, err := NewReader(&buf).ReadSignature()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSignature_Mismatch_ReportsAbsentNotError(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf).WriteSignature()
	corrupted := buf.Bytes()
	corrupted[0] ^= 0xFF

	ok, err := NewReader(bytes.NewReader(corrupted)).ReadSignature()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSignature_VersionMismatch_ReportsAbsent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.write(Signature[:])
	w.WriteUint16(Version + 1)

	ok, err := NewReader(&buf).ReadSignature()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPrimitives_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteUint8(0xAB)
	w.WriteBool(true)
	w.WriteBool(false)
	w.WriteUint16(0x1234)
	w.WriteInt32(-42)
	w.WriteUint64(1 << 40)
	w.WriteString("hello, tape")
	w.WriteBytes([]byte{1, 2, 3})
	w.WriteBytes(nil)
	require.NoError(t, w.Err())

	r := NewReader(&buf)
	require.Equal(t, uint8(0xAB), r.ReadUint8())
	require.Equal(t, true, r.ReadBool())
	require.Equal(t, false, r.ReadBool())
	require.Equal(t, uint16(0x1234), r.ReadUint16())
	require.Equal(t, int32(-42), r.ReadInt32())
	require.Equal(t, uint64(1<<40), r.ReadUint64())
	require.Equal(t, "hello, tape", r.ReadString())
	require.Equal(t, []byte{1, 2, 3}, r.ReadBytes())
	require.Nil(t, r.ReadBytes())
	require.NoError(t, r.Err())
}

func TestWriter_StickyError(t *testing.T) {
	w := NewWriter(&failingWriter{})
	w.WriteUint8(1)
	require.Error(t, w.Err())
	firstErr := w.Err()

	// Further writes are no-ops once an error has been recorded.
	w.WriteUint64(12345)
	require.Equal(t, firstErr, w.Err())
}

func TestReader_StickyError_ShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}))
	r.ReadUint64()
	require.Error(t, r.Err())
	firstErr := r.Err()

	r.ReadUint8()
	require.Equal(t, firstErr, r.Err())
}

func TestTicks_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	ticks := ToTicks(now)
	require.True(t, ticks > 0)
	require.True(t, now.Equal(ticks.Time()))
}

func TestFileDescriptor_RoundTrip(t *testing.T) {
	d := sampleDescriptor()

	var buf bytes.Buffer
	NewWriter(&buf).WriteFileDescriptor(d)

	got := NewReader(&buf).ReadFileDescriptor()
	require.Equal(t, d.FullName, got.FullName)
	require.Equal(t, d.Length, got.Length)
	require.Equal(t, d.Attributes, got.Attributes)
	require.True(t, d.LastModified.Equal(got.LastModified))
}

func TestFileInfo_RoundTrip(t *testing.T) {
	fi := sampleFileInfo(1)

	var buf bytes.Buffer
	NewWriter(&buf).WriteFileInfo(fi)

	got, ok, err := NewReader(&buf).ReadFileInfo()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, fi.ID, got.ID)
	require.Equal(t, fi.StartBlock, got.StartBlock)
	require.Equal(t, fi.Hash, got.Hash)
	require.Equal(t, fi.Descriptor.FullName, got.Descriptor.FullName)
}

func TestFileInfo_AbsentOnSignatureMismatch(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.write([]byte{0, 0, 0, 0})

	_, ok, err := NewReader(&buf).ReadFileInfo()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetTOC_RoundTrip(t *testing.T) {
	set := sampleSet()

	var buf bytes.Buffer
	NewWriter(&buf).WriteSetTOC(set)

	got, ok, err := NewReader(&buf).ReadSetTOC()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, set.Description, got.Description)
	require.Equal(t, set.Volume, got.Volume)
	require.Equal(t, set.Algorithm, got.Algorithm)
	require.Equal(t, set.Incremental(), got.Incremental())
	require.Len(t, got.Files, len(set.Files))
	require.Equal(t, set.Algorithm, got.Files[0].Algorithm())
}

func TestTOC_RoundTrip(t *testing.T) {
	toc := sampleTOC()

	var buf bytes.Buffer
	NewWriter(&buf).WriteTOC(toc)

	got, ok, err := NewReader(&buf).ReadTOC()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, toc.Description, got.Description)
	require.Equal(t, toc.Volume, got.Volume)
	require.Equal(t, toc.PeekNextID(), got.PeekNextID())
	require.Equal(t, toc.SetCount(), got.SetCount())
}

func TestFileHeader_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf).WriteFileHeader(99)

	uid, ok, err := NewReader(&buf).ReadFileHeader()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(99), uid)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, bytes.ErrTooLarge
}
