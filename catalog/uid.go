package catalog

import "github.com/petrkotek/magtape"

// AssignUID allocates the next monotonic UID from toc and stamps it onto
// fi, returning the updated FileInfo.
func AssignUID(toc *magtape.TOC, fi magtape.FileInfo) magtape.FileInfo {
	fi.ID = toc.NextID()
	return fi
}
