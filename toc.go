package magtape

import "time"

// SetTOC is the directory of one backup set: an ordered sequence of
// FileInfo in wire order, plus the metadata the specification requires
// (description, timestamps, filemarks-mode, block size, hash algorithm,
// incremental flag, volume number, continued-from-previous-volume flag).
type SetTOC struct {
	Files       []FileInfo
	Description string
	CreatedAt   time.Time
	LastSavedAt time.Time
	// FilemarksMode is true when files in this set are separated only by
	// filemarks (no setmark support), matching the set's Navigator variant
	// at write time.
	FilemarksMode bool
	BlockSize     uint32
	Algorithm     HashAlgorithm
	incremental   bool
	Volume        int32
	ContinuedFromPreviousVolume bool
}

// SetIncremental toggles the incremental flag. It is only legal while the
// set has no files yet. It does not check whether the set is the first one
// on a volume chain.
func (s *SetTOC) SetIncremental(incremental bool) error {
	if len(s.Files) > 0 {
		return errIncrementalAfterAppend
	}
	s.incremental = incremental
	return nil
}

// Incremental reports whether this set only records files newer than its
// base set chain.
func (s *SetTOC) Incremental() bool {
	return s.incremental
}

// RestoreIncremental sets the incremental flag directly, bypassing the
// empty-set check in SetIncremental. It exists for the deserializer, which
// reads the flag after the set's files are already populated in memory.
func (s *SetTOC) RestoreIncremental(incremental bool) {
	s.incremental = incremental
}

// Append adds a fully-written FileInfo (payload written, hash computed) to
// the set. It enforces that every FileInfo in a set shares the same hash
// algorithm.
func (s *SetTOC) Append(fi FileInfo) error {
	if fi.Algorithm() != s.Algorithm {
		return errMixedHashAlgorithm
	}
	s.Files = append(s.Files, fi)
	return nil
}

// TOC is the top-level catalog: an ordered sequence of SetTOC (oldest
// first), the next-id counter, and volume-chain metadata.
type TOC struct {
	Sets        []SetTOC
	nextID      uint64
	Description string
	CreatedAt   time.Time
	LastSavedAt time.Time
	Volume      int32
	ContinuedOnNextVolume bool
	// currentSet is the write cursor: the index (0-based, into Sets) of the
	// "current" set. It always points at a valid index once at least one
	// set has been started.
	currentSet int
}

// NewTOC creates an empty TOC with its next-id counter starting at 1, as
// required by the specification.
func NewTOC(description string, createdAt time.Time) *TOC {
	return &TOC{
		nextID:      1,
		Description: description,
		CreatedAt:   createdAt,
		LastSavedAt: createdAt,
		Volume:      1,
		currentSet:  -1,
	}
}

// NextID returns the next UID to assign to a FileInfo and advances the
// counter. IDs are monotonic within a TOC and are always > 0.
func (t *TOC) NextID() uint64 {
	id := t.nextID
	t.nextID++
	return id
}

// PeekNextID returns the next UID without consuming it; used by
// (de)serialization to round-trip the counter.
func (t *TOC) PeekNextID() uint64 {
	return t.nextID
}

// SetNextID restores the next-id counter, e.g. after deserializing a TOC
// read back from tape. It refuses to move the counter backwards, since
// that would violate the monotonic-UID invariant for any FileInfo written
// after this call.
func (t *TOC) SetNextID(id uint64) error {
	if id < t.nextID {
		return errNextIDRegression
	}
	t.nextID = id
	return nil
}

// BeginSet appends a new, empty SetTOC and makes it the current set,
// returning its index.
func (t *TOC) BeginSet(set SetTOC) int {
	t.Sets = append(t.Sets, set)
	t.currentSet = len(t.Sets) - 1
	return t.currentSet
}

// CurrentSetIndex returns the 0-based index of the write cursor's set, or
// -1 if no set has been started yet.
func (t *TOC) CurrentSetIndex() int {
	return t.currentSet
}

// CurrentSet returns a pointer to the write cursor's set. Callers must
// check CurrentSetIndex() >= 0 first.
func (t *TOC) CurrentSet() *SetTOC {
	return &t.Sets[t.currentSet]
}

// SetCount returns the number of sets recorded in the TOC.
func (t *TOC) SetCount() int {
	return len(t.Sets)
}

// ResolveSetIndex converts a set position expressed in either of the two
// addressing schemes the specification allows -- 1..N oldest-to-newest, or
// -(N-1)..0 newest-to-oldest (0 meaning "latest") -- into a 0-based slice
// index into t.Sets. Out-of-range requests are clamped to the nearest
// valid end.
func (t *TOC) ResolveSetIndex(position int) int {
	n := len(t.Sets)
	if n == 0 {
		return -1
	}

	var idx int
	if position <= 0 {
		// 0 means "latest" (the last set); -(N-1) means the first.
		idx = n - 1 + position
	} else {
		// 1..N oldest-to-newest.
		idx = position - 1
	}

	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
