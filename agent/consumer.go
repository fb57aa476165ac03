package agent

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/petrkotek/magtape"
)

// Consumer is what differs between the three reading agents: how the
// bytes of one file's payload, already length-limited and hash-verified
// by the shared protocol, get used.
type Consumer interface {
	Consume(fi magtape.FileInfo, r io.Reader) error
}

// RestoreConsumer writes a file's payload to a fresh local file, creating
// parent directories as needed.
type RestoreConsumer struct {
	// TargetRoot, if non-empty, is joined with the descriptor's FullName
	// (stripped of any leading separator) to compute the destination
	// path; otherwise FullName is used as-is.
	TargetRoot string
}

func (c RestoreConsumer) targetPath(fi magtape.FileInfo) string {
	if c.TargetRoot == "" {
		return fi.Descriptor.FullName
	}
	return filepath.Join(c.TargetRoot, filepath.Clean(fi.Descriptor.FullName))
}

func (c RestoreConsumer) Consume(fi magtape.FileInfo, r io.Reader) error {
	path := c.targetPath(fi)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

// ApplyAttributes restores the descriptor's modification/access times and
// read-only bit onto the just-written file, the final step of the shared
// restore protocol.
func (c RestoreConsumer) ApplyAttributes(fi magtape.FileInfo) error {
	path := c.targetPath(fi)
	if err := os.Chtimes(path, fi.Descriptor.LastAccessed, fi.Descriptor.LastModified); err != nil {
		return err
	}
	if fi.Descriptor.Attributes.IsReadOnly() {
		return os.Chmod(path, 0o444)
	}
	return nil
}

// ValidateConsumer discards the payload; only the hash computed by the
// shared protocol matters.
type ValidateConsumer struct{}

func (ValidateConsumer) Consume(_ magtape.FileInfo, r io.Reader) error {
	_, err := io.Copy(io.Discard, r)
	return err
}

// VerifyConsumer compares the payload byte-for-byte against an existing
// local file of the same path.
type VerifyConsumer struct {
	TargetRoot string
}

func (c VerifyConsumer) targetPath(fi magtape.FileInfo) string {
	if c.TargetRoot == "" {
		return fi.Descriptor.FullName
	}
	return filepath.Join(c.TargetRoot, filepath.Clean(fi.Descriptor.FullName))
}

func (c VerifyConsumer) Consume(fi magtape.FileInfo, r io.Reader) error {
	f, err := os.Open(c.targetPath(fi))
	if err != nil {
		return err
	}
	defer f.Close()

	const chunkSize = 64 * 1024
	tapeChunk := make([]byte, chunkSize)
	localChunk := make([]byte, chunkSize)
	for {
		tn, terr := io.ReadFull(r, tapeChunk)
		ln, lerr := io.ReadFull(f, localChunk)
		if tn != ln || !bytes.Equal(tapeChunk[:tn], localChunk[:ln]) {
			return errVerifyMismatch
		}
		if terr == io.EOF && lerr == io.EOF {
			return nil
		}
		if terr != nil && terr != io.ErrUnexpectedEOF && terr != io.EOF {
			return terr
		}
		if lerr != nil && lerr != io.ErrUnexpectedEOF && lerr != io.EOF {
			return lerr
		}
		if (terr == io.EOF || terr == io.ErrUnexpectedEOF) != (lerr == io.EOF || lerr == io.ErrUnexpectedEOF) {
			return errVerifyMismatch
		}
		if terr == io.ErrUnexpectedEOF || terr == io.EOF {
			return nil
		}
	}
}
