// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ringbuf provides bounded, lock-free, off-heap ring buffers for
// passing variable-length binary records between goroutines.
//
// Two shapes are offered: SPSCRingBuffer (one producer, one consumer)
// and MPMCRingBuffer (any number of either). Both share the same wire
// layout — a power-of-two data region followed by a fixed 128-byte
// metadata region — so a region produced by one process can in
// principle be read by another implementation of the same format.
//
// # Quick start
//
//	region, err := ringbuf.Allocate(1<<20, 64)
//	if err != nil {
//	    // handle allocation failure
//	}
//	rb := ringbuf.NewSPSCRingBuffer(region)
//
//	// copy-in write path
//	ok, err := rb.Offer(typeID, payload, 0, len(payload))
//	if !ok {
//	    // not enough space right now; retry later
//	}
//
//	// zero-copy write path
//	slot, view, ok, err := rb.Claim(typeID, 64)
//	if ok {
//	    view.PutLong(0, 0x1)
//	    rb.Publish(slot)
//	}
//
//	// read path
//	n := rb.Poll(func(typeID int32, view *ringbuf.ReadView) {
//	    // handle one record
//	}, 64)
//
// The Builder type selects a shape from producer/consumer cardinality
// the same way:
//
//	rb, err := ringbuf.NewBuilder(1<<20, 64).SingleProducer().SingleConsumer().BuildSPSC()
//
// # Error handling
//
// Insufficient space is not a hard failure: Offer and Claim return
// ok == false alongside ErrInsufficientSpace, a transient, expected
// condition meant to be checked with IsInsufficientSpace (or
// errors.Is) and retried, not propagated like the errors below.
// Construction and misuse errors (ErrInvalidArgument, ErrIllegalState,
// ErrOutOfBounds, ErrAllocationFailure, ErrUnsupported) are ordinary
// sentinel values checked with errors.Is.
package ringbuf
