package wire

// WriteFileHeader writes the lightweight per-file header the agent places
// at the start of a content stream before the (unhashed) payload: the
// signature followed by the file's UID. Unlike WriteFileInfo this never
// carries the descriptor or hash -- those live only in the catalog.
func (w *Writer) WriteFileHeader(uid uint64) {
	w.WriteSignature()
	w.WriteUint64(uid)
}

// ReadFileHeader reads back a per-file header. ok is false (no error) if
// the signature/version didn't match.
func (r *Reader) ReadFileHeader() (uid uint64, ok bool, err error) {
	ok, err = r.ReadSignature()
	if err != nil || !ok {
		return 0, ok, err
	}
	uid = r.ReadUint64()
	if r.err != nil {
		return 0, false, r.err
	}
	return uid, true, nil
}
