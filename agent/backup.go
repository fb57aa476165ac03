package agent

import (
	"io"

	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/catalog"
	"github.com/petrkotek/magtape/errors"
	"github.com/petrkotek/magtape/wire"
)

// BackupItem pairs one file's descriptor snapshot with a way to open its
// content. Filesystem traversal and wildcard expansion happen upstream of
// the agent (an external collaborator); the agent only ever sees the
// flattened list.
type BackupItem struct {
	Descriptor magtape.FileDescriptor
	Open       func() (io.ReadCloser, error)
}

// BatchOptions configures one run of BackupAgent.RunBatch.
type BatchOptions struct {
	Files []BackupItem
	// Recurse records whether Files was produced by a recursive
	// directory walk. RunBatch does not read it and the set's metadata has
	// no field for it; the agent itself never walks a directory tree.
	Recurse        bool
	IgnoreFailures bool
	Incremental    bool
	Algorithm      magtape.HashAlgorithm
	BlockSize      uint32
	FilemarksMode  bool
	// UserCapacityReserve is the headroom the capacity guard holds back
	// beyond the Navigator's own TOC reservation (spec.md's user_cap).
	UserCapacityReserve uint64
}

// BatchState is the resumable multi-volume context: spec.md's
// {file_list, recurse, ignore_failures, notify, index, processed, failed,
// bytes, overall_ok} without file_list/notify, which live on BatchOptions
// and Session respectively.
type BatchState struct {
	Index     int
	Processed int
	Failed    int
	Bytes     uint64
	OverallOK bool
}

// BackupAgent writes a batch of files into the current content set.
type BackupAgent struct {
	*Session
}

// NewBackupAgent wraps s.
func NewBackupAgent(s *Session) *BackupAgent { return &BackupAgent{Session: s} }

// RunBatch begins (or resumes, if state.Index > 0) writing opts.Files into
// the manager's currently open content set. It stops and returns
// errors.ErrEndOfMedia when the capacity guard refuses a file, with
// state.Index left at the failed file so it is retried on the next
// volume.
func (a *BackupAgent) RunBatch(opts BatchOptions, state *BatchState) error {
	if err := a.Mgr.SetContentParameters(opts.BlockSize, opts.FilemarksMode); err != nil {
		return err
	}
	normalizedFilemarksMode := a.Mgr.FilemarksMode()

	set := a.TOC.CurrentSet()
	set.FilemarksMode = normalizedFilemarksMode
	set.Algorithm = opts.Algorithm
	set.BlockSize = opts.BlockSize

	a.Hooks.OnBatchStart()
	state.OverallOK = true

	for state.Index < len(opts.Files) {
		item := opts.Files[state.Index]
		descriptor := item.Descriptor

		skip, rewritten := a.Hooks.PreProcessFile(descriptor)
		if skip {
			a.Hooks.OnFileSkipped(descriptor)
			state.Index++
			continue
		}
		if rewritten != "" {
			descriptor.FullName = rewritten
		}

		if opts.Incremental && catalog.IsUpToDate(a.TOC, a.TOC.CurrentSetIndex(), descriptor.FullName, descriptor.LastModified) {
			a.Hooks.OnFileSkipped(descriptor)
			state.Index++
			continue
		}

		err := a.backupOne(item, descriptor, set, opts.UserCapacityReserve)
		a.Hooks.PostProcessFile(descriptor, err)

		if err != nil {
			if errors.IsEndOfMedia(err) {
				a.TOC.ContinuedOnNextVolume = true
				state.OverallOK = false
				a.Hooks.OnBatchEnd(*state)
				return errors.ErrEndOfMedia
			}
			state.Failed++
			a.Hooks.OnFileFailed(descriptor, err)
			if !opts.IgnoreFailures {
				state.OverallOK = false
				a.Hooks.OnBatchEnd(*state)
				return err
			}
			state.Index++
			continue
		}

		state.Processed++
		state.Index++
	}

	a.Hooks.OnBatchEnd(*state)
	return nil
}

// backupOne implements the per-file backup protocol exactly: open a
// content write stream sized to the file's length, assign a UID and
// record the starting block, write the (unhashed) header, stream the
// payload through the set's hash algorithm, then append the finished
// FileInfo to the set.
func (a *BackupAgent) backupOne(item BackupItem, descriptor magtape.FileDescriptor, set *magtape.SetTOC, userCapacityReserve uint64) error {
	ws, err := a.Mgr.ProduceWriteContentStream(descriptor.Length, userCapacityReserve)
	if err != nil {
		return err
	}

	startBlock, err := a.Drv.CurrentBlock()
	if err != nil {
		ws.Close()
		return err
	}
	uid := a.TOC.NextID()

	w := wire.NewWriter(ws)
	w.WriteFileHeader(uid)
	if w.Err() != nil {
		ws.Close()
		return w.Err()
	}

	src, err := item.Open()
	if err != nil {
		ws.Close()
		return err
	}
	defer src.Close()

	digest := newDigester(set.Algorithm)
	dst := io.Writer(ws)
	if digest != nil {
		dst = io.MultiWriter(ws, digest)
	}
	if _, err := io.Copy(dst, src); err != nil {
		ws.Close()
		return err
	}

	if err := ws.Close(); err != nil {
		return err
	}

	fi := magtape.NewFileInfo(descriptor, startBlock)
	fi.ID = uid
	if digest != nil {
		fi.SetHash(set.Algorithm, digest.Sum())
	}
	return set.Append(fi)
}
