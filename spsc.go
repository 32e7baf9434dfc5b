// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringbuf

// SPSCRingBuffer is a bounded, lock-free, off-heap ring buffer for exactly
// one producer goroutine and exactly one consumer goroutine. The two may
// progress fully in parallel; neither ever blocks the other.
//
// The producer keeps a private cache of the consumer's last observed
// position (reservationState.consumerCache) so the steady-state
// reservation check never touches the shared consumer_position cell —
// the same cached-index discipline used between cachedHead and
// cachedTail in lock-free SPSC queues generally.
type SPSCRingBuffer struct {
	region *Region
	mask   int

	pending reservationState
}

// reservationState tracks the producer's single outstanding zero-copy
// claim plus its cached view of the consumer position. Because there is
// only one producer, this state needs no synchronization of its own.
type reservationState struct {
	consumerCache uint64

	claimed             bool
	slot                int
	newProducerPosition uint64
}

// NewSPSCRingBuffer wraps region as an SPSC ring buffer. The region's
// capacity must already be a power of two (Allocate guarantees this).
func NewSPSCRingBuffer(region *Region) *SPSCRingBuffer {
	return &SPSCRingBuffer{region: region, mask: region.Capacity() - 1}
}

// Size returns D, the capacity of the backing data region in bytes.
func (b *SPSCRingBuffer) Size() int { return b.region.Capacity() }

// MaxPayloadLength returns the largest payload a single record can carry.
func (b *SPSCRingBuffer) MaxPayloadLength() int { return b.region.Capacity() - headerSize }

// ProducerSeq returns the producer's absolute sequence counter.
func (b *SPSCRingBuffer) ProducerSeq() uint64 { return b.region.loadAcquire(offProducerPosition) }

// ConsumerSeq returns the consumer's absolute sequence counter.
func (b *SPSCRingBuffer) ConsumerSeq() uint64 { return b.region.loadAcquire(offConsumerPosition) }

// Utilization returns min(D, producer - consumer), re-reading the
// consumer position if the producer position changed mid-read.
func (b *SPSCRingBuffer) Utilization() int {
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
func (b *SPSCRingBuffer) NextCorrelation() uint64 { return b.region.NextCorrelation() }

// ReadCorrelationCount returns the number of correlation IDs minted so far.
func (b *SPSCRingBuffer) ReadCorrelationCount() uint64 { return b.region.ReadCorrelationCount() }

// MarkHeartbeat stamps the heartbeat slot with ts.
func (b *SPSCRingBuffer) MarkHeartbeat(ts uint64) { b.region.MarkHeartbeat(ts) }

// MarkHeartbeatNow stamps the heartbeat slot with the current cached time.
func (b *SPSCRingBuffer) MarkHeartbeatNow() { b.region.MarkHeartbeatNow() }

// ReadHeartbeat returns the last value written by MarkHeartbeat.
func (b *SPSCRingBuffer) ReadHeartbeat() uint64 { return b.region.ReadHeartbeat() }

// UnderlyingBuffer returns the backing region for external zero-copy
// writers.
func (b *SPSCRingBuffer) UnderlyingBuffer() *Region { return b.region }

// Clear resets both positions to zero and forgets any pending claim. Not
// safe to call concurrently with the producer or the consumer.
func (b *SPSCRingBuffer) Clear() {
	b.region.Clear()
	b.pending = reservationState{}
}

// reserve implements spec §4.4's reservation algorithm: it returns the
// real payload slot and the new producer_position to publish, writing a
// PADDING header at any wrap slot along the way.
func (b *SPSCRingBuffer) reserve(recordSize int) (slot int, newProducerPosition uint64, ok bool) {
	d := b.region.Capacity()
	producerPosition := b.region.loadRelaxed(offProducerPosition)

	fits := func(extra int) bool {
		if producerPosition+uint64(extra)-b.pending.consumerCache > uint64(d) {
			b.pending.consumerCache = b.region.loadAcquire(offConsumerPosition)
			if producerPosition+uint64(extra)-b.pending.consumerCache > uint64(d) {
				return false
			}
		}
		return true
	}

	if !fits(recordSize) {
		return 0, 0, false
	}

	slot = int(producerPosition & uint64(b.mask))
	padSize := 0
	if slot+recordSize > d {
		padSize = d - slot
		if !fits(padSize + recordSize) {
			return 0, 0, false
		}
		b.region.storeHeaderRelease(slot, packHeader(int32(padSize), Padding))
		slot = 0
	}

	newProducerPosition = producerPosition + uint64(padSize) + uint64(recordSize)

	// When this reservation fills the buffer exactly, the cell after it is
	// the oldest unconsumed header (or the padding just written), not a
	// stale one from a previous lap, so it must be left alone.
	nextHeader := slot + recordSize
	if nextHeader < d && newProducerPosition-b.pending.consumerCache < uint64(d) {
		b.region.zeroHeader(nextHeader)
	}
	return slot, newProducerPosition, true
}

// Offer copies src[srcOffset:srcOffset+length] into a newly reserved
// record of the given type and publishes it. Returns false without side
// effects if there is not enough space.
func (b *SPSCRingBuffer) Offer(typeID int32, src []byte, srcOffset, length int) (bool, error) {
	if typeID < 1 {
		return false, ErrInvalidArgument
	}
	if length < 0 || length > b.MaxPayloadLength() {
		return false, ErrInvalidArgument
	}
	recordSize := alignUp(length+headerSize, 8)

	slot, newProducerPosition, ok := b.reserve(recordSize)
	if !ok {
		return false, ErrInsufficientSpace
	}

	var view MutableView
	view.bind(b.region.data[slot+headerSize : slot+recordSize])
	if err := view.PutBytes(0, src, srcOffset, length); err != nil {
		return false, err
	}

	b.region.storeHeaderRelease(slot, packHeader(int32(length+headerSize), typeID))
	b.region.storeRelease(offProducerPosition, newProducerPosition)
	return true, nil
}

// Claim reserves space for a record without writing its payload, leaving
// the header marked in-progress (negative size). The caller writes
// directly into the returned MutableView, then calls Publish or Abandon
// with the same slot.
func (b *SPSCRingBuffer) Claim(typeID int32, length int) (slot int, view MutableView, ok bool, err error) {
	if typeID < 1 {
		return 0, MutableView{}, false, ErrInvalidArgument
	}
	if length < 0 || length > b.MaxPayloadLength() {
		return 0, MutableView{}, false, ErrInvalidArgument
	}
	if b.pending.claimed {
		return 0, MutableView{}, false, ErrIllegalState
	}
	recordSize := alignUp(length+headerSize, 8)

	// The new producer_position is computed now but not published until
	// Publish/Abandon, once the caller has finished writing the payload.
	s, newProducerPosition, ok := b.reserve(recordSize)
	if !ok {
		return 0, MutableView{}, false, ErrInsufficientSpace
	}

	b.region.storeHeaderRelease(s, packHeader(-int32(length+headerSize), typeID))
	b.pending = reservationState{
		consumerCache:       b.pending.consumerCache,
		claimed:             true,
		slot:                s,
		newProducerPosition: newProducerPosition,
	}

	view.bind(b.region.data[s+headerSize : s+recordSize])
	return s, view, true, nil
}

// Publish commits a record previously returned by Claim: it flips the
// header to its committed (positive) form and publishes the new
// producer position.
func (b *SPSCRingBuffer) Publish(slot int) error {
	if !b.pending.claimed || b.pending.slot != slot {
		return ErrIllegalState
	}
	header := b.region.loadHeaderAcquire(slot)
	size, typeID := unpackHeader(header)
	if size >= 0 {
		return ErrIllegalState
	}
	b.region.storeHeaderRelease(slot, packHeader(-size, typeID))

	b.region.storeRelease(offProducerPosition, b.pending.newProducerPosition)
	b.pending.claimed = false
	return nil
}

// Abandon discards a record previously returned by Claim: it rewrites
// the slot as a PADDING record and still publishes the producer position,
// since the space was already reserved and must not be reused.
func (b *SPSCRingBuffer) Abandon(slot int) error {
	if !b.pending.claimed || b.pending.slot != slot {
		return ErrIllegalState
	}
	header := b.region.loadHeaderAcquire(slot)
	size, _ := unpackHeader(header)
	if size >= 0 {
		return ErrIllegalState
	}
	b.region.storeHeaderRelease(slot, packHeader(-size, Padding))

	b.region.storeRelease(offProducerPosition, b.pending.newProducerPosition)
	b.pending.claimed = false
	return nil
}

// Poll delivers up to limit records to consumer, in order, and commits
// consumer_position once when it returns. It stops at the first slot that
// is not yet published. It returns the number of records delivered
// (padding records are skipped and do not count).
func (b *SPSCRingBuffer) Poll(consumer MessageConsumer, limit int) int {
	n, _ := b.pollCore(limit, func(typeID int32, view *ReadView) ConsumerAction {
		consumer(typeID, view)
		return ConsumerActionContinue
	})
	return n
}

// PollAll delivers every currently available record to consumer.
func (b *SPSCRingBuffer) PollAll(consumer MessageConsumer) int {
	return b.Poll(consumer, 1<<31-1)
}

// ControlledPoll is like Poll but consumer returns a ConsumerAction that
// controls whether progress is committed and whether polling continues.
// Abort is supported: the just-delivered record's commit is withheld and
// the call returns immediately.
func (b *SPSCRingBuffer) ControlledPoll(consumer ControlledConsumer, limit int) int {
	n, _ := b.pollCore(limit, consumer)
	return n
}

// ControlledPollAll runs ControlledPoll with an unbounded limit.
func (b *SPSCRingBuffer) ControlledPollAll(consumer ControlledConsumer) int {
	return b.ControlledPoll(consumer, 1<<31-1)
}

func (b *SPSCRingBuffer) pollCore(limit int, consumer ControlledConsumer) (count int, err error) {
	d := b.region.Capacity()
	producerPosition := b.region.loadAcquire(offProducerPosition)
	consumerPosition := b.region.loadRelaxed(offConsumerPosition)
	available := producerPosition - consumerPosition

	var bytesRead uint64
	var view ReadView
	committed := uint64(0)

	defer func() {
		if r := recover(); r != nil {
			b.region.storeRelease(offConsumerPosition, consumerPosition+committed)
			panic(r)
		}
	}()

	for count < limit {
		slot := int((consumerPosition + bytesRead) & uint64(b.mask))
		header := b.region.loadHeaderAcquire(slot)
		size, typeID := unpackHeader(header)
		if size <= 0 {
			break
		}
		aligned := uint64(alignUp(int(size), 8))
		if bytesRead+aligned > available {
			break
		}

		if slot+int(aligned) > d || typeID == Padding {
			bytesRead += aligned
			committed = bytesRead
			continue
		}

		view.bind(b.region.data[slot+headerSize : slot+int(size)])
		action := consumer(typeID, &view)
		bytesRead += aligned

		if !commitsProgress(action) {
			break
		}
		committed = bytesRead
		count++
		if stopsPolling(action) {
			break
		}
	}

	b.region.storeRelease(offConsumerPosition, consumerPosition+committed)
	return count, nil
}
