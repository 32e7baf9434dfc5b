// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package slotqueue provides small, bounded, lock-free FIFO queues of typed
// values, independent of the byte-framed ring buffer that is this module's
// main product.
//
// ringbuf moves raw, variable-length binary records between a producer and
// one or more consumers. slotqueue moves fixed-size Go values — most often
// CorrelationRequest, the bookkeeping record ringbufctl uses to track an
// in-flight request against the correlation ID minted by a Region. The two
// share the same SCQ/Lamport lineage but solve different problems: one is a
// wire format, the other is an in-process handoff queue.
//
// Four shapes are provided, named for their producer/consumer cardinality:
// SPSC (single producer, single consumer), MPSC, SPMC, and MPMC. All are
// non-blocking: Enqueue and Dequeue return ErrWouldBlock immediately rather
// than parking a goroutine.
package slotqueue
