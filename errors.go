package fiberflow

import (
	"errors"
	"fmt"

	"github.com/ygrebnov/errorc"
)

// Namespace prefixes every error message the core produces, so log lines and
// error strings can be grepped back to this module.
const Namespace = "fiberflow"

// Domain identifies which subsystem produced a TaggedError.
type Domain string

const (
	DomainFuture  Domain = "future"
	DomainFiber   Domain = "fiber"
	DomainChannel Domain = "channel"
	DomainTimeout Domain = "timeout"
)

// Code is a stable, comparable failure reason within a Domain.
type Code string

const (
	// CodeChannelClosed is returned by Channel.Send/Receive once the channel
	// (or the relevant half of it) has been closed.
	CodeChannelClosed Code = "CHANNEL_CLOSED"

	// CodeTimedOut is returned by a Timeout future that reached its deadline.
	CodeTimedOut Code = "TIMED_OUT"

	// CodeDependencyFailed tags the error a combinator (Then, All, Chain)
	// propagates from a future it depends on.
	CodeDependencyFailed Code = "DEPENDENCY_FAILED"

	// CodePanic tags the rejection synthesized when a fiber's entry function
	// panics instead of returning.
	CodePanic Code = "PANIC"
)

// TaggedError is the error taxonomy carried by rejected futures: a domain, a
// stable code, and a human-readable message. It wraps an optional cause so
// errors.Is/errors.As keep working across the tag.
type TaggedError struct {
	Domain  Domain
	Code    Code
	Message string
	cause   error
}

// NewTaggedError builds a TaggedError with no underlying cause.
func NewTaggedError(domain Domain, code Code, message string) *TaggedError {
	return &TaggedError{Domain: domain, Code: code, Message: message}
}

// WrapTaggedError builds a TaggedError that unwraps to cause.
func WrapTaggedError(domain Domain, code Code, message string, cause error) *TaggedError {
	return &TaggedError{Domain: domain, Code: code, Message: message, cause: cause}
}

func (e *TaggedError) Error() string {
	// errorc.New builds the message with the domain/code attached as
	// structured fields. Only its rendered string is used: the errorc value
	// is not kept in the error chain, so Unwrap still yields only cause.
	tagged := errorc.New(
		fmt.Sprintf("%s: %s: %s", Namespace, e.Code, e.Message),
		errorc.F("domain", string(e.Domain)),
		errorc.F("code", string(e.Code)),
	)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", tagged.Error(), e.cause)
	}
	return tagged.Error()
}

func (e *TaggedError) Unwrap() error { return e.cause }

// Is reports whether target is a *TaggedError with the same Domain and Code,
// so sentinel-style comparisons (errors.Is(err, fiberflow.ErrChannelClosed))
// work without exposing cause equality.
func (e *TaggedError) Is(target error) bool {
	var t *TaggedError
	if !errors.As(target, &t) {
		return false
	}
	return e.Domain == t.Domain && e.Code == t.Code
}

// Sentinel TaggedErrors for errors.Is comparisons at call sites.
var (
	ErrChannelClosed    = NewTaggedError(DomainChannel, CodeChannelClosed, "channel closed")
	ErrTimedOut         = NewTaggedError(DomainTimeout, CodeTimedOut, "deadline exceeded")
	ErrDependencyFailed = NewTaggedError(DomainFuture, CodeDependencyFailed, "dependency failed")

	// ErrSchedulerClosed rejects a fiber that was created on, or left
	// stranded by, a scheduler that has already been Close()d.
	ErrSchedulerClosed = NewTaggedError(DomainFiber, CodeDependencyFailed, "scheduler is closed")
)

// Plain sentinel errors for programmer-error conditions that never reach a
// Future (invalid configuration, illegal API usage).
var (
	ErrInvalidConfig    = errors.New(Namespace + ": invalid configuration")
	ErrAlreadyScheduled = errors.New(Namespace + ": fiber is already migrated to a scheduler")
	ErrFiberRunning     = errors.New(Namespace + ": cannot migrate a running fiber")
	ErrFiberExited      = errors.New(Namespace + ": cannot migrate an exited fiber")
	ErrCyclicChain      = errors.New(Namespace + ": chain would create a cycle")
)
