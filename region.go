// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringbuf

import (
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/agilira/go-timecache"
)

// MetadataSize is the fixed size, in bytes, of the metadata region: two
// cache lines. The first holds producer_position and the producer's
// consumer cache; the second holds consumer_position, the correlation
// counter, and the heartbeat, so producer_position never shares a cache
// line with consumer_position.
const MetadataSize = 128

// MinDataSize is the smallest data region capacity Allocate accepts.
const MinDataSize = 16

// Normative metadata slot offsets (spec §6). SPSC uses all five; MPMC
// leaves offProducerConsumerCache unused.
const (
	offProducerPosition      = 0
	offProducerConsumerCache = 8
	offConsumerPosition      = 64
	offCorrelationCounter    = 80
	offHeartbeat             = 88
)

// Region is a contiguous backing span for one ring buffer: a power-of-two
// data region followed by a fixed 128-byte metadata region. A Region is
// created once (via Allocate) and lives for the life of the ring buffer
// that wraps it; it never resizes or relocates.
//
// In a systems language this would be an off-heap mmap'd span. Go has no
// portable non-GC heap without cgo; a Region instead pins one
// over-allocated, cache-line-aligned []byte for its lifetime, which gives
// the same contiguity and fixed-address contract the wire format needs
// (spec.md's Non-goals exclude cross-process shared memory, so a
// same-process stable-address slice satisfies the in-process contract).
type Region struct {
	raw  []byte // the full over-allocated backing allocation
	data []byte // data region: len == capacity, a power of two
	meta []byte // metadata region: len == MetadataSize
}

// Allocate returns a Region whose data span is dataSize bytes (a power of
// two, at least MinDataSize) and whose base address is aligned to align
// (a power of two, at least 8). The region is zero-initialized.
func Allocate(dataSize, align int) (region *Region, err error) {
	if !isPowerOfTwo(dataSize) || dataSize < MinDataSize {
		return nil, ErrInvalidArgument
	}
	if !isPowerOfTwo(align) || align < 8 {
		return nil, ErrInvalidArgument
	}

	defer func() {
		if r := recover(); r != nil {
			region, err = nil, ErrAllocationFailure
		}
	}()

	total := dataSize + MetadataSize + align
	raw := make([]byte, total)

	base := uintptr(unsafe.Pointer(&raw[0]))
	pad := (align - int(base&uintptr(align-1))) & (align - 1)

	data := raw[pad : pad+dataSize : pad+dataSize]
	meta := raw[pad+dataSize : pad+dataSize+MetadataSize : pad+dataSize+MetadataSize]

	return &Region{raw: raw, data: data, meta: meta}, nil
}

// BaseAddress returns the address of the first byte of the data region.
// Exposed for external zero-copy writers; the Region retains ownership.
func (r *Region) BaseAddress() uintptr {
	return uintptr(unsafe.Pointer(&r.data[0]))
}

// Capacity returns D, the power-of-two size of the data region.
func (r *Region) Capacity() int {
	return len(r.data)
}

// Data returns the raw data region. Callers must respect the
// claim/publish protocol when writing into it directly.
func (r *Region) Data() []byte {
	return r.data
}

// Clear resets both positions, the correlation counter, and the heartbeat
// slot to zero. It is not safe to call concurrently with any producer or
// consumer.
func (r *Region) Clear() {
	clear(r.data)
	clear(r.meta)
}

func (r *Region) u64(offset int) *uint64 {
	return (*uint64)(unsafe.Pointer(&r.meta[offset]))
}

func (r *Region) loadAcquire(offset int) uint64  { return atomic.LoadUint64(r.u64(offset)) }
func (r *Region) storeRelease(offset int, v uint64) { atomic.StoreUint64(r.u64(offset), v) }
func (r *Region) loadRelaxed(offset int) uint64  { return atomic.LoadUint64(r.u64(offset)) }
func (r *Region) storeRelaxed(offset int, v uint64) { atomic.StoreUint64(r.u64(offset), v) }

func (r *Region) compareAndSwap(offset int, old, new uint64) bool {
	return atomic.CompareAndSwapUint64(r.u64(offset), old, new)
}

func (r *Region) addRelaxed(offset int, delta uint64) uint64 {
	return atomic.AddUint64(r.u64(offset), delta)
}

// headerPtr returns the 64-bit header cell at the given byte offset into
// the data region. slot must be 8-byte aligned; every ring buffer
// reservation guarantees this since D and every record/padding size are
// multiples of 8.
func (r *Region) headerPtr(slot int) *uint64 {
	return (*uint64)(unsafe.Pointer(&r.data[slot]))
}

func (r *Region) loadHeaderAcquire(slot int) uint64 {
	return atomic.LoadUint64(r.headerPtr(slot))
}

func (r *Region) storeHeaderRelease(slot int, header uint64) {
	atomic.StoreUint64(r.headerPtr(slot), header)
}

// zeroHeader clears the header cell at slot. SPSC calls this on the cell
// immediately following a freshly reserved record, so a stale committed
// header left over from a previous lap is never misread as the next
// record (spec §4.4's reservation algorithm).
func (r *Region) zeroHeader(slot int) {
	atomic.StoreUint64(r.headerPtr(slot), 0)
}

// NextCorrelation atomically mints a new, strictly increasing correlation
// ID scoped to this region. Its only contract is uniqueness.
func (r *Region) NextCorrelation() uint64 {
	return r.addRelaxed(offCorrelationCounter, 1)
}

// ReadCorrelationCount returns the number of correlation IDs minted so
// far without minting one itself.
func (r *Region) ReadCorrelationCount() uint64 {
	return r.loadRelaxed(offCorrelationCounter)
}

// MarkHeartbeat stores an opaque liveness timestamp with release ordering.
func (r *Region) MarkHeartbeat(ts uint64) {
	r.storeRelease(offHeartbeat, ts)
}

// MarkHeartbeatNow stamps the heartbeat slot with the current time from a
// shared, low-overhead cached clock rather than calling time.Now directly
// on every tick.
func (r *Region) MarkHeartbeatNow() {
	r.MarkHeartbeat(uint64(timecache.DefaultCache().CachedTime().UnixNano()))
}

// ReadHeartbeat loads the heartbeat slot with acquire ordering.
func (r *Region) ReadHeartbeat() uint64 {
	return r.loadAcquire(offHeartbeat)
}

// ReadHeartbeatAge returns how long ago the heartbeat was last marked,
// using MarkHeartbeatNow's clock source for comparison.
func (r *Region) ReadHeartbeatAge() time.Duration {
	ts := r.ReadHeartbeat()
	if ts == 0 {
		return 0
	}
	now := timecache.DefaultCache().CachedTime().UnixNano()
	return time.Duration(now - int64(ts))
}
