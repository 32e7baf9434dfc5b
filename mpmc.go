// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringbuf

import "code.hybscloud.com/spin"

// MPMCRingBuffer is a bounded, lock-free, off-heap ring buffer safe for
// any number of concurrent producer and consumer goroutines.
//
// The wire layout is identical to SPSCRingBuffer. Both positions are
// advanced by CAS rather than by a single writer: a producer's CAS on
// producer_position both reserves the slot and publishes the new
// position in one step, and a consumer's CAS on consumer_position both
// claims a record and commits it atomically — there is no cached
// producer/consumer position to maintain, since any number of peers on
// either side can move the shared counters between two reads.
type MPMCRingBuffer struct {
	region *Region
	mask   int
}

// NewMPMCRingBuffer wraps region as an MPMC ring buffer. The region's
// capacity must already be a power of two (Allocate guarantees this).
func NewMPMCRingBuffer(region *Region) *MPMCRingBuffer {
	return &MPMCRingBuffer{region: region, mask: region.Capacity() - 1}
}

// Size returns D, the capacity of the backing data region in bytes.
func (b *MPMCRingBuffer) Size() int { return b.region.Capacity() }

// MaxPayloadLength returns the largest payload a single record can carry.
func (b *MPMCRingBuffer) MaxPayloadLength() int { return b.region.Capacity() - headerSize }

// ProducerSeq returns the producer side's absolute sequence counter.
func (b *MPMCRingBuffer) ProducerSeq() uint64 { return b.region.loadAcquire(offProducerPosition) }

// ConsumerSeq returns the consumer side's absolute sequence counter.
func (b *MPMCRingBuffer) ConsumerSeq() uint64 { return b.region.loadAcquire(offConsumerPosition) }

// Utilization returns min(D, producer - consumer), re-reading the
// consumer position if the producer position changed mid-read.
func (b *MPMCRingBuffer) Utilization() int {
	for {
		producer := b.region.loadAcquire(offProducerPosition)
		consumer := b.region.loadAcquire(offConsumerPosition)
		producer2 := b.region.loadAcquire(offProducerPosition)
		if producer != producer2 {
			continue
		}
		used := int(producer - consumer)
		if used > b.region.Capacity() {
			return b.region.Capacity()
		}
		return used
	}
}

// NextCorrelation mints a new correlation ID scoped to this ring buffer.
func (b *MPMCRingBuffer) NextCorrelation() uint64 { return b.region.NextCorrelation() }

// ReadCorrelationCount returns the number of correlation IDs minted so far.
func (b *MPMCRingBuffer) ReadCorrelationCount() uint64 { return b.region.ReadCorrelationCount() }

// MarkHeartbeat stamps the heartbeat slot with ts.
func (b *MPMCRingBuffer) MarkHeartbeat(ts uint64) { b.region.MarkHeartbeat(ts) }

// MarkHeartbeatNow stamps the heartbeat slot with the current cached time.
func (b *MPMCRingBuffer) MarkHeartbeatNow() { b.region.MarkHeartbeatNow() }

// ReadHeartbeat returns the last value written by MarkHeartbeat.
func (b *MPMCRingBuffer) ReadHeartbeat() uint64 { return b.region.ReadHeartbeat() }

// UnderlyingBuffer returns the backing region for external zero-copy
// writers.
func (b *MPMCRingBuffer) UnderlyingBuffer() *Region { return b.region }

// Clear resets both positions to zero. Not safe to call concurrently
// with any producer or consumer.
func (b *MPMCRingBuffer) Clear() { b.region.Clear() }

// reserve implements spec §4.5's producer reservation loop: CAS
// producer_position from its observed value to the new position,
// retrying on failure. On success the caller exclusively owns the
// returned slot (and, if padSize > 0, the wrap padding has already been
// written).
func (b *MPMCRingBuffer) reserve(recordSize int) (slot int, ok bool) {
	d := b.region.Capacity()
	sw := spin.Wait{}
	for {
		consumerPosition := b.region.loadAcquire(offConsumerPosition)
		producerPosition := b.region.loadAcquire(offProducerPosition)

		if producerPosition+uint64(recordSize)-consumerPosition > uint64(d) {
			return 0, false
		}

		s := int(producerPosition & uint64(b.mask))
		padSize := 0
		if s+recordSize > d {
			padSize = d - s
			if producerPosition+uint64(padSize)+uint64(recordSize)-consumerPosition > uint64(d) {
				return 0, false
			}
			s = 0
		}
		newProducerPosition := producerPosition + uint64(padSize) + uint64(recordSize)

		if !b.region.compareAndSwap(offProducerPosition, producerPosition, newProducerPosition) {
			sw.Once()
			continue
		}

		if padSize > 0 {
			padSlot := int(producerPosition & uint64(b.mask))
			b.region.storeHeaderRelease(padSlot, packHeader(int32(padSize), Padding))
		}
		return s, true
	}
}

// Offer copies src[srcOffset:srcOffset+length] into a newly reserved
// record of the given type and publishes it. Returns false without side
// effects if there is not enough space.
func (b *MPMCRingBuffer) Offer(typeID int32, src []byte, srcOffset, length int) (bool, error) {
	if typeID < 1 {
		return false, ErrInvalidArgument
	}
	if length < 0 || length > b.MaxPayloadLength() {
		return false, ErrInvalidArgument
	}
	recordSize := alignUp(length+headerSize, 8)

	slot, ok := b.reserve(recordSize)
	if !ok {
		return false, ErrInsufficientSpace
	}

	var view MutableView
	view.bind(b.region.data[slot+headerSize : slot+recordSize])
	if err := view.PutBytes(0, src, srcOffset, length); err != nil {
		return false, err
	}
	b.region.storeHeaderRelease(slot, packHeader(int32(length+headerSize), typeID))
	return true, nil
}

// Claim reserves space for a record without writing its payload, leaving
// the header marked in-progress (negative size). The caller writes
// directly into the returned MutableView, then calls Publish or Abandon
// with the same slot. Unlike SPSC, any number of producers may each have
// an outstanding claim at a disjoint slot at the same time, so no
// buffer-wide pending state is kept — the slot's own header sign is the
// only bookkeeping needed.
func (b *MPMCRingBuffer) Claim(typeID int32, length int) (slot int, view MutableView, ok bool, err error) {
	if typeID < 1 {
		return 0, MutableView{}, false, ErrInvalidArgument
	}
	if length < 0 || length > b.MaxPayloadLength() {
		return 0, MutableView{}, false, ErrInvalidArgument
	}
	recordSize := alignUp(length+headerSize, 8)

	s, ok := b.reserve(recordSize)
	if !ok {
		return 0, MutableView{}, false, ErrInsufficientSpace
	}

	b.region.storeHeaderRelease(s, packHeader(-int32(length+headerSize), typeID))
	view.bind(b.region.data[s+headerSize : s+recordSize])
	return s, view, true, nil
}

// Publish commits a record previously returned by Claim: it flips the
// header at slot to its committed (positive) form.
func (b *MPMCRingBuffer) Publish(slot int) error {
	header := b.region.loadHeaderAcquire(slot)
	size, typeID := unpackHeader(header)
	if size >= 0 {
		return ErrIllegalState
	}
	b.region.storeHeaderRelease(slot, packHeader(-size, typeID))
	return nil
}

// Abandon discards a record previously returned by Claim: it rewrites
// the slot as a PADDING record. The reserved space is never reclaimed —
// it was already counted against producer_position by the reservation
// CAS.
func (b *MPMCRingBuffer) Abandon(slot int) error {
	header := b.region.loadHeaderAcquire(slot)
	size, _ := unpackHeader(header)
	if size >= 0 {
		return ErrIllegalState
	}
	b.region.storeHeaderRelease(slot, packHeader(-size, Padding))
	return nil
}

// Poll delivers up to limit records to consumer, each atomically claimed
// via CAS on consumer_position, and returns the number delivered.
func (b *MPMCRingBuffer) Poll(consumer MessageConsumer, limit int) int {
	n, _ := b.pollCore(limit, func(typeID int32, view *ReadView) ConsumerAction {
		consumer(typeID, view)
		return ConsumerActionContinue
	})
	return n
}

// PollAll delivers every currently available record to consumer.
func (b *MPMCRingBuffer) PollAll(consumer MessageConsumer) int {
	return b.Poll(consumer, 1<<31-1)
}

// ControlledPoll is like Poll but consumer returns a ConsumerAction.
// ConsumerActionAbort is not supported on MPMC — the record was already
// atomically claimed by the CAS before the callback ran, so there is
// nothing to roll back — and returns ErrUnsupported if requested.
func (b *MPMCRingBuffer) ControlledPoll(consumer ControlledConsumer, limit int) (int, error) {
	return b.pollCore(limit, consumer)
}

// ControlledPollAll runs ControlledPoll with an unbounded limit.
func (b *MPMCRingBuffer) ControlledPollAll(consumer ControlledConsumer) (int, error) {
	return b.ControlledPoll(consumer, 1<<31-1)
}

func (b *MPMCRingBuffer) pollCore(limit int, consumer ControlledConsumer) (count int, err error) {
	sw := spin.Wait{}
	var view ReadView

	for count < limit {
		h := b.region.loadAcquire(offConsumerPosition)
		producerPosition := b.region.loadAcquire(offProducerPosition)
		if h >= producerPosition {
			break
		}

		slot := int(h & uint64(b.mask))
		header := b.region.loadHeaderAcquire(slot)
		size, typeID := unpackHeader(header)
		if size <= 0 {
			break
		}
		aligned := uint64(alignUp(int(size), 8))

		if !b.region.compareAndSwap(offConsumerPosition, h, h+aligned) {
			sw.Once()
			continue
		}

		if typeID == Padding {
			continue
		}

		view.bind(b.region.data[slot+headerSize : slot+int(size)])
		action := consumer(typeID, &view)
		if action == ConsumerActionAbort {
			return count, ErrUnsupported
		}
		count++
		if stopsPolling(action) {
			break
		}
	}
	return count, nil
}
