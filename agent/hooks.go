package agent

import "github.com/petrkotek/magtape"

// Hooks receives the per-file and per-batch notifications the
// specification requires. Callers (the out-of-scope CLI/progress
// reporter) implement whichever methods they care about; embed NopHooks
// to satisfy the interface with no-ops for the rest.
type Hooks interface {
	// PreProcessFile is called before a file is processed. Returning
	// skip=true excludes the file without counting it as failed; a
	// non-empty rewrittenPath replaces the descriptor's path for this
	// operation only.
	PreProcessFile(fi magtape.FileDescriptor) (skip bool, rewrittenPath string)
	// PostProcessFile is called after a file has been fully processed,
	// successfully or not.
	PostProcessFile(fi magtape.FileDescriptor, err error)
	// OnFileSkipped is called for a file excluded by PreProcessFile or by
	// the incremental up-to-date check.
	OnFileSkipped(fi magtape.FileDescriptor)
	// OnFileFailed is called for a file that failed for any reason other
	// than end-of-media. A backup batch goes on to the next file only when
	// ignore_failures is set, and otherwise stops after this call; a read
	// batch always goes on.
	OnFileFailed(fi magtape.FileDescriptor, err error)
	// OnBatchStart/OnBatchEnd bracket one run of a batch loop.
	OnBatchStart()
	OnBatchEnd(state BatchState)
}

// NopHooks implements Hooks with no-ops for every method, mirroring
// disko's NopObjectHandle pattern: embed it to pick up only the hooks a
// caller actually wants to override.
type NopHooks struct{}

func (NopHooks) PreProcessFile(magtape.FileDescriptor) (bool, string) { return false, "" }
func (NopHooks) PostProcessFile(magtape.FileDescriptor, error)        {}
func (NopHooks) OnFileSkipped(magtape.FileDescriptor)                 {}
func (NopHooks) OnFileFailed(magtape.FileDescriptor, error)           {}
func (NopHooks) OnBatchStart()                                        {}
func (NopHooks) OnBatchEnd(BatchState)                                {}
