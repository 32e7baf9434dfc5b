// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotqueue

// Queue is the combined producer-consumer interface implemented by all four
// shapes in this package.
//
// The interface intentionally excludes a length method: an accurate count
// in a lock-free queue requires cross-core synchronization no cheaper than
// the operations it would be used to avoid.
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
	Cap() int
}

// Producer enqueues values without blocking.
type Producer[T any] interface {
	// Enqueue copies *elem into the queue. Returns ErrWouldBlock if full.
	Enqueue(elem *T) error
}

// Consumer dequeues values without blocking.
type Consumer[T any] interface {
	// Dequeue removes and returns a value. Returns (zero, ErrWouldBlock)
	// if empty.
	Dequeue() (T, error)
}

// Drainer signals that no more enqueues will occur.
//
// MPSC and MPMC implement this; SPSC and SPMC do not. On MPMC, calling
// Drain once every producer has stopped lets consumers empty the queue
// without the threshold livelock guard rejecting a Dequeue that would
// otherwise succeed.
type Drainer interface {
	Drain()
}
