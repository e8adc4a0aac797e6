// Package errors defines the error tree shared by all ctc packages.
package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	// Base error; every error in ctc inherits from this
	Err = fmt.Errorf("ctc error")

	// Format and system errors
	ErrDecode        = fmt.Errorf("decoding error (%w)", Err)
	ErrEncode        = fmt.Errorf("encoding error (%w)", Err)
	ErrInvalidType   = fmt.Errorf("invalid type (%w)", Err)
	ErrMissingFile   = fmt.Errorf("missing file (%w)", Err)
	ErrUnknownFormat = fmt.Errorf("unknown format (%w)", Err)
	ErrUnknownStyle  = fmt.Errorf("unknown style (%w)", Err)
	ErrInvalidPath   = fmt.Errorf("invalid path (%w)", Err)

	// Base template error
	ErrTemplate = fmt.Errorf("template error (%w)", Err)

	// Parse-stage errors
	ErrParse = fmt.Errorf("parse error (%w)", ErrTemplate)

	// Expansion-stage errors
	ErrExpand      = fmt.Errorf("expansion error (%w)", ErrTemplate)
	ErrBadName     = fmt.Errorf("malformed expanded name (%w)", ErrExpand)
	ErrBadRef      = fmt.Errorf("unresolved template reference (%w)", ErrExpand)
	ErrNotIterable = fmt.Errorf("expanded value is not iterable (%w)", ErrExpand)
	ErrBadCond     = fmt.Errorf("invalid instance condition (%w)", ErrExpand)
	ErrDataFormat  = fmt.Errorf("invalid data format (%w)", ErrExpand)
)

// Is and As delegate to the standard library so callers never need a
// second errors import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}
