// Package catalog implements the on-tape directory operations (C7) that
// sit above the root package's TOC/SetTOC/FileInfo types: set indexing,
// volume-aware queries, pattern-based file selection, incremental
// selection, the up-to-date check, and UID allocation.
package catalog

import "github.com/petrkotek/magtape"

// SetPosition converts a set position in the specification's newest-first
// addressing scheme (0 means latest, -1 the one before it, ...) into the
// oldest-first 1..N scheme TOC.ResolveSetIndex understands, and back into
// a human-facing 1-based ordinal. It exists so callers working from the
// newest-first convention (the one agents use when selecting sets to
// process) don't have to hand-roll the conversion at every call site.
func SetPosition(toc *magtape.TOC, newestFirst int) (ordinal int) {
	idx := toc.ResolveSetIndex(newestFirst)
	if idx < 0 {
		return 0
	}
	return idx + 1
}

// FirstSetOnVolume returns the 0-based index of the first set (lowest
// index) whose Volume equals toc.Sets[from].Volume, scanning backwards
// from from.
func FirstSetOnVolume(toc *magtape.TOC, from int) int {
	if from < 0 || from >= len(toc.Sets) {
		return -1
	}
	volume := toc.Sets[from].Volume
	i := from
	for i > 0 && toc.Sets[i-1].Volume == volume {
		i--
	}
	return i
}

// LastSetOnVolume returns the 0-based index of the last set (highest
// index) whose Volume equals toc.Sets[from].Volume, scanning forwards
// from from.
func LastSetOnVolume(toc *magtape.TOC, from int) int {
	if from < 0 || from >= len(toc.Sets) {
		return -1
	}
	volume := toc.Sets[from].Volume
	i := from
	for i+1 < len(toc.Sets) && toc.Sets[i+1].Volume == volume {
		i++
	}
	return i
}
