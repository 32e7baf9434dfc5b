// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringbuf

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrInvalidArgument is returned for a bad type_id (<= 0), a negative or
// over-size payload length, a data size that is not a power of two, or an
// alignment that is not a power of two.
var ErrInvalidArgument = errors.New("ringbuf: invalid argument")

// ErrIllegalState is returned when Publish or Abandon is called on a slot
// that is not currently in-progress.
var ErrIllegalState = errors.New("ringbuf: illegal state")

// ErrOutOfBounds is returned by a buffer view accessor when index < 0 or
// index+size exceeds the view's length.
var ErrOutOfBounds = errors.New("ringbuf: index out of bounds")

// ErrAllocationFailure is returned by the allocator when the underlying
// runtime cannot satisfy a region request.
var ErrAllocationFailure = errors.New("ringbuf: allocation failure")

// ErrUnsupported is returned when an MPMC controlled poll callback returns
// ConsumerActionAbort: the record has already been atomically claimed by
// the CAS-based consumer protocol and cannot be left uncommitted.
var ErrUnsupported = errors.New("ringbuf: unsupported operation")

// ErrInsufficientSpace is the second return value of Offer and Claim
// when the ring buffer cannot reserve the requested space right now.
// This is not a hard failure: it is a transient, expected condition
// surfaced as a value rather than propagated like the errors above. It
// mirrors iox.ErrWouldBlock, the same non-failure convention the rest
// of this ecosystem uses for "try again later" signals.
var ErrInsufficientSpace = iox.ErrWouldBlock

// IsInsufficientSpace reports whether err indicates a reservation could
// not be satisfied because the ring buffer has no room right now.
func IsInsufficientSpace(err error) bool {
	return errors.Is(err, ErrInsufficientSpace)
}
