package agent

import (
	"bytes"
	"io"

	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/catalog"
	"github.com/petrkotek/magtape/wire"
)

// ReadBatchOptions configures one run of ReadAgent.RunBatch: the same
// pattern/incremental selection the backup side uses, rooted at FromSet
// (in the newest-first addressing TOC.ResolveSetIndex accepts; 0 is the
// latest set).
type ReadBatchOptions struct {
	Patterns    *catalog.PatternSet
	Incremental bool
	FromSet     int
}

// ReadAgent implements the shared per-file read protocol that restore,
// validate, and verify all build on; Consumer supplies the one thing that
// differs between them.
type ReadAgent struct {
	*Session
	Consumer Consumer
}

// NewReadAgent wraps s with the given Consumer (a RestoreConsumer,
// ValidateConsumer, or VerifyConsumer).
func NewReadAgent(s *Session, consumer Consumer) *ReadAgent {
	return &ReadAgent{Session: s, Consumer: consumer}
}

// RunBatch computes the selection for opts, processes sets oldest-first
// (so the tape only ever moves forward), and within each set applies the
// positioning-skip optimization: a file immediately following the
// previous one in wire order needs no extra positioning call.
func (a *ReadAgent) RunBatch(opts ReadBatchOptions, state *BatchState) error {
	current := a.TOC.ResolveSetIndex(opts.FromSet)

	var selections []catalog.Selection
	if opts.Incremental {
		selections = catalog.SelectIncremental(a.TOC, current, opts.Patterns)
	} else {
		selections = []catalog.Selection{catalog.SelectSet(a.TOC, current, opts.Patterns)}
	}
	for i, j := 0, len(selections)-1; i < j; i, j = i+1, j-1 {
		selections[i], selections[j] = selections[j], selections[i]
	}

	a.Hooks.OnBatchStart()
	state.OverallOK = true

	for _, sel := range selections {
		if len(sel.FileIndices) == 0 {
			continue
		}
		if err := a.Mgr.MoveToTargetContentSet(magtape.ContentSetCursor(sel.SetIndex)); err != nil {
			state.OverallOK = false
			a.Hooks.OnBatchEnd(*state)
			return err
		}

		set := &a.TOC.Sets[sel.SetIndex]
		prevIdx := -1
		for _, fileIdx := range sel.FileIndices {
			fi := set.Files[fileIdx]

			skip, _ := a.Hooks.PreProcessFile(fi.Descriptor)
			if skip {
				a.Hooks.OnFileSkipped(fi.Descriptor)
				state.Index++
				continue
			}

			if err := a.position(set, prevIdx, fileIdx); err != nil {
				state.OverallOK = false
				a.Hooks.OnBatchEnd(*state)
				return err
			}

			err := a.readOne(fi, set)
			a.Hooks.PostProcessFile(fi.Descriptor, err)
			prevIdx = fileIdx

			if err != nil {
				state.Failed++
				a.Hooks.OnFileFailed(fi.Descriptor, err)
				state.Index++
				continue
			}
			state.Processed++
			state.Index++
		}
	}

	a.Hooks.OnBatchEnd(*state)
	return nil
}

// position moves the drive to fileIdx within set, skipping the call
// entirely when fileIdx immediately follows prevIdx in wire order -- the
// specification's positioning-skip optimization. It relies on readOne
// having already consumed prevIdx's own trailing filemark, so the count
// for a multi-file jump only needs to account for each fully-skipped
// file's filemark, not prevIdx's.
func (a *ReadAgent) position(set *magtape.SetTOC, prevIdx, fileIdx int) error {
	if prevIdx >= 0 && fileIdx == prevIdx+1 {
		return nil
	}
	if set.FilemarksMode {
		if prevIdx < 0 {
			return a.Drv.MoveNextFilemark(fileIdx)
		}
		return a.Drv.MoveNextFilemark(fileIdx - prevIdx - 1)
	}
	return a.Drv.MoveToBlock(set.Files[fileIdx].StartBlock)
}

// readOne implements the shared per-file read protocol: open a content
// read stream, deserialize the header and check its UID, clamp to the
// descriptor's length, run the payload through the Consumer (optionally
// wrapped in a digest), compare the digest, then apply restore-specific
// attributes.
func (a *ReadAgent) readOne(fi magtape.FileInfo, set *magtape.SetTOC) (err error) {
	rs, err := a.Mgr.ProduceReadContentStream(false, -1)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := rs.Close()
		// The length limit stops delivery exactly at the descriptor's
		// length, short of the block padding and trailing filemark
		// onStreamClosed wrote on the backup side. Consuming that
		// filemark here, regardless of outcome, keeps the drive
		// positioned right after this file for every subsequent
		// position() call in the same set.
		if moveErr := a.Drv.MoveNextFilemark(1); moveErr != nil && err == nil {
			err = moveErr
		}
		if err == nil {
			err = closeErr
		}
	}()

	r := wire.NewReader(rs)
	uid, ok, err := r.ReadFileHeader()
	if err != nil {
		return err
	}
	if !ok || uid != fi.ID {
		return errUIDMismatch
	}

	// The length limit is absolute from the stream's start, and the
	// header has already been read off the front of it, so the payload
	// boundary sits at (bytes already delivered) + the descriptor's
	// length, not the length alone.
	if err := rs.SetLengthLimit(rs.Delivered() + fi.Descriptor.Length); err != nil {
		return err
	}

	digest := newDigester(set.Algorithm)
	var src io.Reader = rs
	if digest != nil {
		src = io.TeeReader(rs, digest)
	}

	if err := a.Consumer.Consume(fi, src); err != nil {
		return err
	}

	if digest != nil && !bytes.Equal(digest.Sum(), fi.Hash) {
		return errDigestMismatch
	}

	if rc, ok := a.Consumer.(RestoreConsumer); ok {
		return rc.ApplyAttributes(fi)
	}
	return nil
}
