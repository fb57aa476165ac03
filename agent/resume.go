package agent

import (
	"time"

	"github.com/petrkotek/magtape"
)

// ResumeOnNextVolume implements the specification's resume-to-next-volume
// protocol. The caller has already rebuilt the Navigator for the newly
// loaded medium (drive.LoadMedia + streammgr.PrepareMedia, since media
// capabilities may differ) before calling this; it only bumps the volume
// counter, clears ContinuedOnNextVolume, and clones the interrupted set's
// metadata into a fresh one marked ContinuedFromPreviousVolume. The
// caller re-enters RunBatch at state.Index unchanged -- the file that
// triggered end-of-media is retried first on the new volume.
func ResumeOnNextVolume(toc *magtape.TOC, now time.Time) {
	previous := toc.CurrentSet()
	toc.Volume++
	toc.ContinuedOnNextVolume = false

	next := magtape.SetTOC{
		Description:                 previous.Description,
		CreatedAt:                   now,
		FilemarksMode:               previous.FilemarksMode,
		BlockSize:                   previous.BlockSize,
		Algorithm:                   previous.Algorithm,
		Volume:                      toc.Volume,
		ContinuedFromPreviousVolume: true,
	}
	toc.BeginSet(next)
	_ = toc.CurrentSet().SetIncremental(previous.Incremental())
}
