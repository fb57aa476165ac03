package agent

import (
	"github.com/petrkotek/magtape/errors"
)

var (
	errBothTOCCopiesInvalid = errors.ErrInvalidData.WithMessage("both TOC copies failed signature or CRC validation")
	errUIDMismatch          = errors.ErrInvalidData.WithMessage("file header UID does not match catalog entry")
	errDigestMismatch       = errors.ErrInvalidData.WithMessage("computed digest does not match catalog entry")
	errVerifyMismatch       = errors.ErrInvalidData.WithMessage("restored bytes do not match the existing local file")
)
