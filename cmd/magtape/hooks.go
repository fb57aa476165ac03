package main

import (
	"log"

	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/agent"
)

// logHooks reports per-file and per-batch progress via log.Printf;
// everything under agent/ and below stays silent and communicates through
// returned errors instead.
type logHooks struct {
	agent.NopHooks
	verb string
}

func (h logHooks) OnFileSkipped(fi magtape.FileDescriptor) {
	log.Printf("%s: skip %s", h.verb, fi.FullName)
}

func (h logHooks) OnFileFailed(fi magtape.FileDescriptor, err error) {
	log.Printf("%s: FAILED %s: %s", h.verb, fi.FullName, err)
}

func (h logHooks) OnBatchEnd(state agent.BatchState) {
	log.Printf("%s: done -- processed %d, failed %d", h.verb, state.Processed, state.Failed)
}
