package fiberflow

import (
	"errors"
	"fmt"
)

// FiberMetaError exposes correlation metadata for a fiber result failure:
// which fiber produced the error, so a listener that fans in several fibers'
// results can tell them apart without threading an extra side channel.
type FiberMetaError interface {
	error
	Unwrap() error
	FiberID() (uint64, bool)
}

type fiberTaggedError struct {
	err error
	id  uint64
}

func newFiberTaggedError(err error, id uint64) error {
	if err == nil {
		return nil
	}
	return &fiberTaggedError{err: err, id: id}
}

func (e *fiberTaggedError) Error() string { return e.err.Error() }
func (e *fiberTaggedError) Unwrap() error { return e.err }

func (e *fiberTaggedError) FiberID() (uint64, bool) { return e.id, true }

func (e *fiberTaggedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "fiber(id=%d): %+v", e.id, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractFiberID returns the originating fiber's ID from err if present.
func ExtractFiberID(err error) (uint64, bool) {
	var fme FiberMetaError
	if errors.As(err, &fme) {
		return fme.FiberID()
	}
	return 0, false
}
