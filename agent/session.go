// Package agent implements the backup, restore, validate, and verify
// agents (C8): the layer that drives a Stream Manager and a catalog TOC
// to move whole files on and off tape.
package agent

import (
	"github.com/hashicorp/go-multierror"
	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/drive"
	"github.com/petrkotek/magtape/streammgr"
	"github.com/petrkotek/magtape/wire"
)

// Session is the state every agent shares: a drive, the Stream Manager
// built on it, the in-memory TOC being read or written, and the
// notification hooks callers receive progress through.
type Session struct {
	Drv   *drive.Drive
	Mgr   *streammgr.Manager
	TOC   *magtape.TOC
	Hooks Hooks
}

// NewSession wraps an already MediaPrepared drive/manager pair. hooks may
// be nil, in which case NopHooks is used.
func NewSession(drv *drive.Drive, mgr *streammgr.Manager, toc *magtape.TOC, hooks Hooks) *Session {
	if hooks == nil {
		hooks = NopHooks{}
	}
	return &Session{Drv: drv, Mgr: mgr, TOC: toc, Hooks: hooks}
}

// WriteTOC writes both back-to-back copies of s.TOC, each CRC-64
// protected and framed at streammgr.TOCBlockSize. Both copies must
// succeed; any failure is reported as a *multierror.Error so a caller can
// inspect which copy (or copies) failed rather than just the first.
func (s *Session) WriteTOC() error {
	payload, err := wire.EncodeTOC(s.TOC)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for i := 0; i < 2; i++ {
		ws, err := s.Mgr.ProduceWriteTOCStream()
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if _, err := ws.Write(payload); err != nil {
			result = multierror.Append(result, err)
		}
		if err := ws.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	return s.Mgr.EndWriteTOC()
}

// ReadTOC reads the first TOC copy; if its signature, deserialization, or
// CRC check fails, it tries the second. It only fails if both copies
// fail, aggregating both errors with multierror so the caller can see
// exactly why each copy was rejected.
func (s *Session) ReadTOC() (*magtape.TOC, error) {
	var result *multierror.Error

	for i := 0; i < 2; i++ {
		rs, err := s.Mgr.ProduceReadTOCStream(false, -1)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		toc, ok, err := wire.DecodeTOCStream(rs)
		closeErr := rs.Close()
		// DecodeTOCStream stops reading the instant the checksum is
		// verified, leaving the block padding the writer appended before
		// this copy's closing filemark unread. Skip past it explicitly so
		// the next copy (or whatever follows the TOC) starts at its own
		// filemark-delimited boundary rather than mid-block.
		if moveErr := s.Drv.MoveNextFilemark(1); moveErr != nil && err == nil {
			err = moveErr
		}
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if closeErr != nil {
			result = multierror.Append(result, closeErr)
			continue
		}
		if !ok {
			result = multierror.Append(result, errBothTOCCopiesInvalid)
			continue
		}
		return toc, nil
	}
	return nil, result.ErrorOrNil()
}
