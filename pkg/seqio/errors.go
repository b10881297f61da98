package seqio

import (
	"errors"
	"fmt"
)

// ErrLineTooLong is wrapped by *LineTooLongError.
var ErrLineTooLong = errors.New("line too long")

// IOError reports a path that could not be opened, sniffed or read.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	switch e.Op {
	case "open":
		return fmt.Sprintf("cannot open file %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("cannot %s file %s: %v", e.Op, e.Path, e.Err)
	}
}

func (e *IOError) Unwrap() error { return e.Err }

// LineTooLongError is returned under the Reject policy.
type LineTooLongError struct {
	Path   string
	Line   int
	Length int
	Max    int
}

func (e *LineTooLongError) Error() string {
	return fmt.Sprintf("%s:%d: line of %d bytes exceeds limit of %d bytes", e.Path, e.Line, e.Length, e.Max)
}

func (e *LineTooLongError) Unwrap() error { return ErrLineTooLong }
