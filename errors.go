package magtape

import "github.com/petrkotek/magtape/errors"

var (
	errIncrementalAfterAppend = errors.ErrInvalidState.WithMessage(
		"a set's incremental flag can only be changed before its first file is appended")
	errMixedHashAlgorithm = errors.ErrInvalidData.WithMessage(
		"all files in a set must share the same hash algorithm")
	errNextIDRegression = errors.ErrInvalidData.WithMessage(
		"TOC next-id counter cannot move backwards")
	errInvalidDigestLength = errors.ErrInvalidData.WithMessage(
		"digest length does not match hash algorithm")
)
