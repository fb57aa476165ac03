package tapestream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memDevice is a minimal in-memory BlockDevice: a flat slice of blocks,
// plus an optional filemark position that ends the readable data.
type memDevice struct {
	blockSize int
	blocks    [][]byte
	pos       int
	filemarkAt int // index at which a filemark is hit on read; -1 for none
}

func newMemDevice(blockSize int) *memDevice {
	return &memDevice{blockSize: blockSize, filemarkAt: -1}
}

func (d *memDevice) WriteBlock(buf []byte) (int, bool, bool, error) {
	block := make([]byte, len(buf))
	copy(block, buf)
	d.blocks = append(d.blocks, block)
	return len(buf), false, false, nil
}

func (d *memDevice) ReadBlock(buf []byte) (int, bool, bool, error) {
	if d.filemarkAt >= 0 && d.pos >= d.filemarkAt {
		return 0, true, false, errFilemark
	}
	if d.pos >= len(d.blocks) {
		return 0, true, false, errFilemark
	}
	n := copy(buf, d.blocks[d.pos])
	d.pos++
	return n, false, false, nil
}

type sentinelErr string

func (e sentinelErr) Error() string { return string(e) }

const errFilemark = sentinelErr("filemark")

func TestWriteStream_BufferedWrite_FlushesWholeBlocks(t *testing.T) {
	dev := newMemDevice(4)
	ws := NewWriteStream(dev, 4, nil)

	n, err := ws.Write([]byte("abcdefg"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	require.NoError(t, ws.Flush())

	var got bytes.Buffer
	for _, b := range dev.blocks {
		got.Write(b)
	}
	assert.Equal(t, "abcdefg\x00", got.String())
	assert.EqualValues(t, 7, ws.BytesWritten())
}

func TestWriteStream_DirectBypass_ForLargeChunk(t *testing.T) {
	dev := newMemDevice(4)
	ws := NewWriteStream(dev, 4, nil)

	payload := bytes.Repeat([]byte{0x41}, 16) // 2 full buffers (buf cap = 2*blockSize = 8)
	_, err := ws.Write(payload)
	require.NoError(t, err)
	require.NoError(t, ws.Flush())

	var got bytes.Buffer
	for _, b := range dev.blocks {
		got.Write(b)
	}
	assert.Equal(t, payload, got.Bytes())
}

func TestWriteStream_Flush_NeverUpdatesAccumulator(t *testing.T) {
	dev := newMemDevice(8)
	ws := NewWriteStream(dev, 8, nil)
	ws.Write([]byte("abc")) // 3 bytes, short of a block
	require.NoError(t, ws.Flush())
	assert.EqualValues(t, 3, ws.BytesWritten())
}

func TestWriteStream_Close_InvokesNotify(t *testing.T) {
	dev := newMemDevice(4)
	notified := false
	ws := NewWriteStream(dev, 4, func() error {
		notified = true
		return nil
	})
	ws.Write([]byte("ab"))
	require.NoError(t, ws.Close())
	assert.True(t, notified)
}

func TestReadStream_BufferedRead(t *testing.T) {
	dev := newMemDevice(4)
	dev.blocks = [][]byte{[]byte("abcd"), []byte("efgh")}
	rs := NewReadStream(dev, 4, false, false)

	dst := make([]byte, 3)
	n, err := rs.Read(dst)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(dst[:n]))

	all, err := io.ReadAll(rs)
	require.NoError(t, err)
	assert.Equal(t, "defgh", string(all))
}

func TestReadStream_LengthLimit(t *testing.T) {
	dev := newMemDevice(4)
	dev.blocks = [][]byte{[]byte("abcd"), []byte("efgh")}
	rs := NewReadStream(dev, 4, false, false)
	require.NoError(t, rs.SetLengthLimit(5))

	all, err := io.ReadAll(rs)
	require.NoError(t, err)
	assert.Equal(t, "abcde", string(all))
	assert.EqualValues(t, 5, rs.Length())
}

func TestReadStream_TextMode_EOFOnNUL(t *testing.T) {
	dev := newMemDevice(16)
	payload := append([]byte("abc"), 0)
	payload = append(payload, []byte("xyz1234567890")...)
	dev.blocks = [][]byte{payload}
	rs := NewReadStream(dev, 16, false, true)

	dst := make([]byte, 16)
	n, err := rs.Read(dst)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(dst[:n]))

	n, err = rs.Read(dst)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
	assert.True(t, rs.EOF())
}

func TestReadStream_DirectBypass_ForLargeRequest(t *testing.T) {
	dev := newMemDevice(4)
	dev.blocks = [][]byte{[]byte("abcd"), []byte("efgh"), []byte("ijkl")}
	rs := NewReadStream(dev, 4, false, false)

	dst := make([]byte, 8)
	n, err := rs.Read(dst)
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", string(dst[:n]))
}

func TestReadStream_ZeroLengthDriveReadSetsEOF(t *testing.T) {
	dev := newMemDevice(4)
	rs := NewReadStream(dev, 4, false, false)
	n, err := rs.Read(make([]byte, 4))
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}
