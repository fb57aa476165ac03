package streambuf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_FillAndSpill_FIFO(t *testing.T) {
	buf := newRaw(8)
	source := bytes.NewReader([]byte("abcdefgh"))

	n, err := buf.FillFrom(source, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, buf.Len())

	var dst bytes.Buffer
	n, err = buf.SpillTo(&dst, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "ab", dst.String())

	n, err = buf.FillFrom(source, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	dst.Reset()
	_, err = buf.SpillTo(&dst, buf.Len())
	require.NoError(t, err)
	assert.Equal(t, "cdefgh", dst.String())
}

func TestBuffer_FillFrom_InterleavedWithSpill_PreservesOrder(t *testing.T) {
	buf := newRaw(4)
	source := bytes.NewReader([]byte("0123456789"))
	var delivered bytes.Buffer

	for source.Len() > 0 || buf.Len() > 0 {
		if !buf.Full() && source.Len() > 0 {
			buf.FillFrom(source, 2)
		}
		buf.SpillTo(&delivered, 1)
	}
	assert.Equal(t, "0123456789", delivered.String())
}

func TestBuffer_ZeroPadToBlock(t *testing.T) {
	buf := newRaw(1024)
	buf.FillFrom(bytes.NewReader([]byte("hello")), 5)

	total := buf.ZeroPadToBlock(8)
	assert.Equal(t, 8, total)

	var dst bytes.Buffer
	buf.SpillTo(&dst, buf.Len())
	assert.Equal(t, append([]byte("hello"), 0, 0, 0), dst.Bytes())
}

func TestBuffer_ZeroPadToBlock_AlreadyAligned(t *testing.T) {
	buf := newRaw(16)
	buf.FillFrom(bytes.NewReader([]byte("12345678")), 8)
	total := buf.ZeroPadToBlock(8)
	assert.Equal(t, 8, total)
}

func TestBuffer_Compaction_OnlyWhenTailTooSmall(t *testing.T) {
	buf := newRaw(4)
	buf.FillFrom(bytes.NewReader([]byte("ab")), 2)
	var dst bytes.Buffer
	buf.SpillTo(&dst, 1) // read=1, write=2: tail free = 2, fits a 1-byte fill without compaction
	n, err := buf.FillFrom(bytes.NewReader([]byte("c")), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, buf.read, "no compaction needed when the free tail already fits")
}

func TestBuffer_Reset(t *testing.T) {
	buf := newRaw(8)
	buf.FillFrom(bytes.NewReader([]byte("abcd")), 4)
	buf.Reset()
	assert.True(t, buf.Empty())
	assert.Equal(t, 8, buf.Free())
}
