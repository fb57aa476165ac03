package wire

import "github.com/petrkotek/magtape"

// WriteFileDescriptor serializes a FileDescriptor: UTF-8 full name, 8-byte
// length, 4-byte attribute flags, then created/modified/accessed as three
// 8-byte tick counts.
func (w *Writer) WriteFileDescriptor(d magtape.FileDescriptor) {
	w.WriteString(d.FullName)
	w.WriteInt64(d.Length)
	w.WriteUint32(uint32(d.Attributes))
	w.WriteTicks(ToTicks(d.CreatedAt))
	w.WriteTicks(ToTicks(d.LastModified))
	w.WriteTicks(ToTicks(d.LastAccessed))
}

func (r *Reader) ReadFileDescriptor() magtape.FileDescriptor {
	var d magtape.FileDescriptor
	d.FullName = r.ReadString()
	d.Length = r.ReadInt64()
	d.Attributes = magtape.FileAttr(r.ReadUint32())
	d.CreatedAt = r.ReadTicks().Time()
	d.LastModified = r.ReadTicks().Time()
	d.LastAccessed = r.ReadTicks().Time()
	return d
}

// WriteFileInfo serializes one catalog row: signature, 8-byte UID, 8-byte
// starting block, the FileDescriptor, then the nullable-length hash digest.
// The digest is written as it is: a FileInfo with no hash attached (nil
// Hash, as for HashNone) writes a null byte sequence.
func (w *Writer) WriteFileInfo(fi magtape.FileInfo) {
	w.WriteSignature()
	w.WriteUint64(fi.ID)
	w.WriteUint64(fi.StartBlock)
	w.WriteFileDescriptor(fi.Descriptor)
	w.WriteBytes(fi.Hash)
}

// ReadFileInfo deserializes one FileInfo. ok is false (with no error) if
// the signature/version didn't match; this is the "absent" outcome the
// specification requires for every self-describing object.
func (r *Reader) ReadFileInfo() (fi magtape.FileInfo, ok bool, err error) {
	ok, err = r.ReadSignature()
	if err != nil || !ok {
		return magtape.FileInfo{}, ok, err
	}
	fi.ID = r.ReadUint64()
	fi.StartBlock = r.ReadUint64()
	fi.Descriptor = r.ReadFileDescriptor()
	fi.Hash = r.ReadBytes()
	if r.err != nil {
		return magtape.FileInfo{}, false, r.err
	}
	return fi, true, nil
}

// WriteSetTOC serializes one backup set's directory.
func (w *Writer) WriteSetTOC(s magtape.SetTOC) {
	w.WriteSignature()
	w.WriteInt32(int32(len(s.Files)))
	for _, fi := range s.Files {
		w.WriteFileInfo(fi)
	}
	w.WriteString(s.Description)
	w.WriteTicks(ToTicks(s.CreatedAt))
	w.WriteBool(s.FilemarksMode)
	w.WriteUint32(s.BlockSize)
	w.WriteTicks(ToTicks(s.LastSavedAt))
	w.WriteInt32(int32(s.Algorithm))
	w.WriteBool(s.Incremental())
	w.WriteInt32(s.Volume)
	w.WriteBool(s.ContinuedFromPreviousVolume)
}

// ReadSetTOC deserializes one SetTOC.
func (r *Reader) ReadSetTOC() (s magtape.SetTOC, ok bool, err error) {
	ok, err = r.ReadSignature()
	if err != nil || !ok {
		return magtape.SetTOC{}, ok, err
	}
	count := r.ReadInt32()
	if r.err != nil {
		return magtape.SetTOC{}, false, r.err
	}
	if count < 0 {
		return magtape.SetTOC{}, false, ErrFormat
	}
	files := make([]magtape.FileInfo, 0, count)
	for i := int32(0); i < count; i++ {
		fi, fok, ferr := r.ReadFileInfo()
		if ferr != nil {
			return magtape.SetTOC{}, false, ferr
		}
		if !fok {
			return magtape.SetTOC{}, false, nil
		}
		files = append(files, fi)
	}
	s.Files = files
	s.Description = r.ReadString()
	s.CreatedAt = r.ReadTicks().Time()
	s.FilemarksMode = r.ReadBool()
	s.BlockSize = r.ReadUint32()
	s.LastSavedAt = r.ReadTicks().Time()
	s.Algorithm = magtape.HashAlgorithm(r.ReadInt32())
	incremental := r.ReadBool()
	s.Volume = r.ReadInt32()
	s.ContinuedFromPreviousVolume = r.ReadBool()
	if r.err != nil {
		return magtape.SetTOC{}, false, r.err
	}
	for i := range s.Files {
		if err := s.Files[i].ApplyAlgorithm(s.Algorithm); err != nil {
			return magtape.SetTOC{}, false, err
		}
	}
	s.RestoreIncremental(incremental)
	return s, true, nil
}

// WriteTOC serializes the top-level catalog.
func (w *Writer) WriteTOC(t *magtape.TOC) {
	w.WriteSignature()
	w.WriteUint64(t.PeekNextID())
	w.WriteInt32(int32(t.SetCount()))
	for i := 0; i < t.SetCount(); i++ {
		w.WriteSetTOC(t.Sets[i])
	}
	w.WriteString(t.Description)
	w.WriteTicks(ToTicks(t.CreatedAt))
	w.WriteTicks(ToTicks(t.LastSavedAt))
	w.WriteInt32(t.Volume)
	w.WriteBool(t.ContinuedOnNextVolume)
}

// ReadTOC deserializes a full TOC.
func (r *Reader) ReadTOC() (t *magtape.TOC, ok bool, err error) {
	ok, err = r.ReadSignature()
	if err != nil || !ok {
		return nil, ok, err
	}
	nextID := r.ReadUint64()
	count := r.ReadInt32()
	if r.err != nil {
		return nil, false, r.err
	}
	if count < 0 {
		return nil, false, ErrFormat
	}

	result := magtape.NewTOC("", epoch)
	for i := int32(0); i < count; i++ {
		s, sok, serr := r.ReadSetTOC()
		if serr != nil {
			return nil, false, serr
		}
		if !sok {
			return nil, false, nil
		}
		result.BeginSet(s)
	}
	result.Description = r.ReadString()
	result.CreatedAt = r.ReadTicks().Time()
	result.LastSavedAt = r.ReadTicks().Time()
	result.Volume = r.ReadInt32()
	result.ContinuedOnNextVolume = r.ReadBool()
	if r.err != nil {
		return nil, false, r.err
	}
	if err := result.SetNextID(nextID); err != nil {
		return nil, false, err
	}
	return result, true, nil
}
