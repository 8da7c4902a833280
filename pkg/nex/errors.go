package nex

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic             = errors.New("nex: bad magic")
	ErrUnknownVarType       = errors.New("nex: unknown variable type")
	ErrTruncated            = errors.New("nex: truncated data")
	ErrCorruptHeader        = errors.New("nex: corrupt header")
	ErrInconsistentOffset   = errors.New("nex: inconsistent data offset")
	ErrInvalidFrequency     = errors.New("nex: invalid frequency")
	ErrTickRange            = errors.New("nex: tick out of range")
	ErrIndexOutOfRange      = errors.New("nex: index out of range")
	ErrFieldTooLong         = errors.New("nex: field too long")
	ErrInconsistentVariable = errors.New("nex: inconsistent variable")
	ErrFileTooLarge         = errors.New("nex: file too large")
)

// VarError reports a failure tied to a single directory entry.
type VarError struct {
	Index int
	Name  string
	Type  VarType
	Err   error
}

func (e *VarError) Error() string {
	return fmt.Sprintf("nex: variable %d (%s %q): %v", e.Index, e.Type, e.Name, e.Err)
}

func (e *VarError) Unwrap() error { return e.Err }

// IndexError is returned when a caller addresses a position past the end of a
// type-filtered directory view.
type IndexError struct {
	Type  VarType
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("nex: %s index %d out of range [0,%d)", e.Type, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }
