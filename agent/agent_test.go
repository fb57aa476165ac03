package agent

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/catalog"
	"github.com/petrkotek/magtape/fixture"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	mgr, drv, _ := fixture.NewPreparedManager(t, fixture.DefaultParams, 64<<20, false)

	toc := magtape.NewTOC("test", time.Now())
	toc.BeginSet(magtape.SetTOC{Volume: 1})

	return NewSession(drv, mgr, toc, nil)
}

type memOpener struct{ data []byte }

func (m memOpener) open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

func TestBackupThenRestore_RoundTrip(t *testing.T) {
	sess := newTestSession(t)
	backup := NewBackupAgent(sess)

	payload := bytes.Repeat([]byte("x"), 100)
	items := []BackupItem{
		{
			Descriptor: magtape.FileDescriptor{FullName: "/a.txt", Length: int64(len(payload)), LastModified: time.Now()},
			Open:       memOpener{payload}.open,
		},
	}

	state := &BatchState{}
	opts := BatchOptions{Files: items, Algorithm: magtape.HashCRC64, BlockSize: 1024}
	require.NoError(t, backup.RunBatch(opts, state))
	require.Equal(t, 1, state.Processed)
	require.NoError(t, sess.Mgr.EndWriteContentSet())

	require.Len(t, sess.TOC.CurrentSet().Files, 1)
	fi := sess.TOC.CurrentSet().Files[0]
	require.True(t, fi.Valid())
	require.Len(t, fi.Hash, magtape.HashCRC64.DigestSize())

	var buf bytes.Buffer
	consumer := bufferConsumer{&buf}
	read := NewReadAgent(sess, consumer)
	readState := &BatchState{}
	readOpts := ReadBatchOptions{Patterns: catalog.NewPatternSet(nil), FromSet: 0}
	require.NoError(t, read.RunBatch(readOpts, readState))
	require.Equal(t, 1, readState.Processed)
	require.Equal(t, payload, buf.Bytes())
}

func TestWriteTOCThenReadTOC_RoundTrip(t *testing.T) {
	sess := newTestSession(t)
	sess.TOC.Description = "first set"

	require.NoError(t, sess.WriteTOC())

	got, err := sess.ReadTOC()
	require.NoError(t, err)
	require.Equal(t, sess.TOC.Description, got.Description)
	require.Len(t, got.Sets, 1)
}

type bufferConsumer struct{ buf *bytes.Buffer }

func (c bufferConsumer) Consume(_ magtape.FileInfo, r io.Reader) error {
	_, err := io.Copy(c.buf, r)
	return err
}
