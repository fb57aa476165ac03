package catalog

import (
	"strings"
	"time"

	"github.com/boljen/go-bitmap"
	"github.com/petrkotek/magtape"
)

// Selection is one set's worth of files chosen by an incremental or
// pattern-based selection pass: the 0-based index of the set in TOC.Sets,
// and the indices (into that set's Files slice) of the files selected.
type Selection struct {
	SetIndex    int
	FileIndices []int
}

// FindBaseSet walks backwards from current (a 0-based index into
// toc.Sets) to the most recent non-incremental set at or below it, then,
// if that base is itself marked ContinuedFromPreviousVolume, extends one
// set further back to include the set it continues from. Returns -1 if
// current is out of range.
func FindBaseSet(toc *magtape.TOC, current int) int {
	if current < 0 || current >= len(toc.Sets) {
		return -1
	}
	base := current
	for base > 0 && toc.Sets[base].Incremental() {
		base--
	}
	if toc.Sets[base].ContinuedFromPreviousVolume && base > 0 {
		base--
	}
	return base
}

// SelectIncremental implements the specification's incremental selection:
// from current down to FindBaseSet(toc, current), select files matching
// patterns minus files whose path already appears (case-insensitively) in
// a newer already-selected set. Returns one Selection per set, ordered
// newest-first (current first, base last).
func SelectIncremental(toc *magtape.TOC, current int, patterns *PatternSet) []Selection {
	base := FindBaseSet(toc, current)
	if base < 0 {
		return nil
	}

	seen := make(map[string]bool)
	var out []Selection
	for i := current; i >= base; i-- {
		set := &toc.Sets[i]
		covered := bitmap.New(len(set.Files))
		for fi, f := range set.Files {
			key := strings.ToLower(f.Descriptor.FullName)
			if seen[key] {
				covered.Set(fi, true)
			}
		}

		var sel Selection
		sel.SetIndex = i
		for fi, f := range set.Files {
			if covered.Get(fi) {
				continue
			}
			if !patterns.Match(f.Descriptor.FullName) {
				continue
			}
			sel.FileIndices = append(sel.FileIndices, fi)
			seen[strings.ToLower(f.Descriptor.FullName)] = true
		}
		out = append(out, sel)
	}
	return out
}

// SelectSet selects files matching patterns from a single set, for the
// non-incremental batch-selection path (the specification's "one per
// set, newest first" degenerates to one set when incremental is off).
func SelectSet(toc *magtape.TOC, index int, patterns *PatternSet) Selection {
	sel := Selection{SetIndex: index}
	if index < 0 || index >= len(toc.Sets) {
		return sel
	}
	for fi, f := range toc.Sets[index].Files {
		if patterns.Match(f.Descriptor.FullName) {
			sel.FileIndices = append(sel.FileIndices, fi)
		}
	}
	return sel
}

// IsUpToDate reports whether a file at path fullName with the given
// last-modified time is already backed up, per the specification: scanning
// from current down to FindBaseSet(toc, current), any matching entry with
// LastModified >= lastModified counts as up to date.
func IsUpToDate(toc *magtape.TOC, current int, fullName string, lastModified time.Time) bool {
	base := FindBaseSet(toc, current)
	if base < 0 {
		return false
	}
	key := strings.ToLower(fullName)
	for i := current; i >= base; i-- {
		for _, f := range toc.Sets[i].Files {
			if strings.ToLower(f.Descriptor.FullName) != key {
				continue
			}
			if !f.Descriptor.LastModified.Before(lastModified) {
				return true
			}
		}
	}
	return false
}
