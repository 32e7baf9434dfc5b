// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotqueue

// Builder selects a queue shape from producer/consumer cardinality
// constraints, mirroring the fluent constructor ringbuf.Builder uses for
// ring buffers.
type Builder struct {
	singleProducer bool
	singleConsumer bool
	capacity       int
}

// NewBuilder returns a Builder for a queue of the given capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{capacity: capacity}
}

// SingleProducer constrains the queue to exactly one producer goroutine.
func (b *Builder) SingleProducer() *Builder {
	b.singleProducer = true
	return b
}

// SingleConsumer constrains the queue to exactly one consumer goroutine.
func (b *Builder) SingleConsumer() *Builder {
	b.singleConsumer = true
	return b
}

// Build constructs the queue shape implied by the constraints set so far:
// both constraints gives SPSC, producer-only gives SPMC, consumer-only
// gives MPSC, neither gives MPMC.
func Build[T any](b *Builder) Queue[T] {
	switch {
	case b.singleProducer && b.singleConsumer:
		return NewSPSC[T](b.capacity)
	case b.singleProducer:
		return NewSPMC[T](b.capacity)
	case b.singleConsumer:
		return NewMPSC[T](b.capacity)
	default:
		return NewMPMC[T](b.capacity)
	}
}
