package wire

import (
	"testing"
	"time"

	"github.com/petrkotek/magtape"
	"github.com/stretchr/testify/require"
)

func sampleDescriptor() magtape.FileDescriptor {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return magtape.FileDescriptor{
		FullName:     "/home/user/report.csv",
		Length:       4096,
		Attributes:   magtape.FileAttrArchive,
		CreatedAt:    now.Add(-48 * time.Hour),
		LastModified: now,
		LastAccessed: now,
	}
}

func sampleFileInfo(id uint64) magtape.FileInfo {
	fi := magtape.NewFileInfo(sampleDescriptor(), 128)
	fi.ID = id
	fi.SetHash(magtape.HashCRC64, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	return fi
}

func sampleSet() magtape.SetTOC {
	set := magtape.SetTOC{
		Description: "nightly backup",
		CreatedAt:   time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC),
		BlockSize:   65536,
		Algorithm:   magtape.HashCRC64,
		Volume:      1,
	}
	set.Append(sampleFileInfo(1))
	return set
}

func sampleTOC() *magtape.TOC {
	toc := magtape.NewTOC("nightly chain", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	toc.BeginSet(sampleSet())
	toc.NextID()
	return toc
}

func TestEncodeDecodeTOC_RoundTrip(t *testing.T) {
	toc := sampleTOC()

	data, err := EncodeTOC(toc)
	require.NoError(t, err)

	got, ok, err := DecodeTOC(data)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, toc.Description, got.Description)
	require.Equal(t, toc.SetCount(), got.SetCount())
}

func TestDecodeTOC_CorruptedChecksum_ReportsAbsent(t *testing.T) {
	data, err := EncodeTOC(sampleTOC())
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF

	got, ok, err := DecodeTOC(data)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, got)
}

func TestDecodeTOC_TooShort_ReportsAbsent(t *testing.T) {
	got, ok, err := DecodeTOC([]byte{1, 2, 3})
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, got)
}

func TestDecodeTOCStream_IgnoresTrailingPadding(t *testing.T) {
	data, err := EncodeTOC(sampleTOC())
	require.NoError(t, err)

	// A tape copy is followed by block padding before its closing
	// filemark; DecodeTOCStream must stop reading the instant the
	// checksum verifies, leaving the padding unconsumed.
	padded := append(append([]byte{}, data...), make([]byte, 512)...)

	got, ok, err := DecodeTOCStream(&byteReader{padded})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, sampleTOC().Description, got.Description)
}

type byteReader struct{ data []byte }

func (b *byteReader) Read(p []byte) (int, error) {
	n := copy(p, b.data)
	b.data = b.data[n:]
	if n == 0 {
		return 0, errEOFStub
	}
	return n, nil
}

// errEOFStub avoids importing io solely for io.EOF in this tiny adapter.
var errEOFStub = ioEOF

type ioEOFType struct{}

func (ioEOFType) Error() string { return "EOF" }

var ioEOF error = ioEOFType{}
