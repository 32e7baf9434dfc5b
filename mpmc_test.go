// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringbuf

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
	"testing"
)

func newMPMCForTest(t *testing.T, dataSize int) *MPMCRingBuffer {
	t.Helper()
	region, err := Allocate(dataSize, 64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	return NewMPMCRingBuffer(region)
}

func TestMPMCOfferPollRoundTrip(t *testing.T) {
	b := newMPMCForTest(t, 256)
	payload := []byte("hello mpmc")

	ok, err := b.Offer(1, payload, 0, len(payload))
	if err != nil || !ok {
		t.Fatalf("Offer: ok=%v err=%v", ok, err)
	}

	var got []byte
	n := b.Poll(func(typeID int32, view *ReadView) {
		got = make([]byte, view.Length())
		view.GetBytes(0, got, 0, view.Length())
		if typeID != 1 {
			t.Fatalf("typeID: got %d, want 1", typeID)
		}
	}, 10)
	if n != 1 {
		t.Fatalf("Poll count: got %d, want 1", n)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload: got %q, want %q", got, payload)
	}
}

func TestMPMCClaimPublishZeroCopy(t *testing.T) {
	b := newMPMCForTest(t, 256)

	slot, view, ok, err := b.Claim(9, 8)
	if err != nil || !ok {
		t.Fatalf("Claim: ok=%v err=%v", ok, err)
	}
	view.PutLong(0, 42)
	if err := b.Publish(slot); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	var got int64
	n := b.Poll(func(typeID int32, v *ReadView) {
		got, _ = v.GetLong(0)
		if typeID != 9 {
			t.Fatalf("typeID: got %d, want 9", typeID)
		}
	}, 1)
	if n != 1 || got != 42 {
		t.Fatalf("n=%d got=%d, want n=1 got=42", n, got)
	}
}

func TestMPMCAbandonSkipsRecord(t *testing.T) {
	b := newMPMCForTest(t, 256)
	slot, _, ok, err := b.Claim(2, 8)
	if err != nil || !ok {
		t.Fatalf("Claim: ok=%v err=%v", ok, err)
	}
	if err := b.Abandon(slot); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	n := b.Poll(func(int32, *ReadView) {
		t.Fatalf("callback should not run for an abandoned record")
	}, 10)
	if n != 0 {
		t.Fatalf("Poll count: got %d, want 0", n)
	}
}

func TestMPMCPublishWithoutClaimIsIllegalState(t *testing.T) {
	b := newMPMCForTest(t, 256)
	if err := b.Publish(0); err != ErrIllegalState {
		t.Fatalf("Publish without Claim: got %v, want ErrIllegalState", err)
	}
}

func TestMPMCControlledPollAbortIsUnsupported(t *testing.T) {
	b := newMPMCForTest(t, 256)
	b.Offer(1, []byte("a"), 0, 1)

	n, err := b.ControlledPoll(func(int32, *ReadView) ConsumerAction {
		return ConsumerActionAbort
	}, 10)
	if err != ErrUnsupported {
		t.Fatalf("ControlledPoll Abort: got err=%v, want ErrUnsupported", err)
	}
	if n != 0 {
		t.Fatalf("ControlledPoll Abort: got n=%d, want 0", n)
	}
}

func TestMPMCOfferZeroLengthPayloadRoundTrips(t *testing.T) {
	b := newMPMCForTest(t, 256)
	ok, err := b.Offer(7, nil, 0, 0)
	if err != nil || !ok {
		t.Fatalf("Offer: ok=%v err=%v", ok, err)
	}

	sawRecord := false
	n := b.Poll(func(typeID int32, view *ReadView) {
		sawRecord = true
		if typeID != 7 {
			t.Fatalf("typeID: got %d, want 7", typeID)
		}
		if view.Length() != 0 {
			t.Fatalf("Length: got %d, want 0", view.Length())
		}
	}, 10)
	if n != 1 || !sawRecord {
		t.Fatalf("Poll: n=%d sawRecord=%v, want n=1 sawRecord=true", n, sawRecord)
	}
}

func TestMPMCOfferExactlyMaxPayloadFillsBuffer(t *testing.T) {
	b := newMPMCForTest(t, 256)
	max := b.MaxPayloadLength()
	payload := make([]byte, max)
	for i := range payload {
		payload[i] = byte(i)
	}

	ok, err := b.Offer(8, payload, 0, max)
	if err != nil || !ok {
		t.Fatalf("Offer at MaxPayloadLength: ok=%v err=%v", ok, err)
	}

	if ok, err := b.Offer(9, []byte("x"), 0, 1); ok || !IsInsufficientSpace(err) {
		t.Fatalf("Offer while full: ok=%v err=%v, want ok=false ErrInsufficientSpace", ok, err)
	}

	var got []byte
	n := b.Poll(func(typeID int32, view *ReadView) {
		if typeID != 8 {
			t.Fatalf("typeID: got %d, want 8", typeID)
		}
		got = make([]byte, view.Length())
		view.GetBytes(0, got, 0, view.Length())
	}, 10)
	if n != 1 {
		t.Fatalf("Poll: got %d, want 1", n)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload round trip mismatch")
	}

	// Now that the consumer has drained, the buffer accepts offers again.
	if ok, err := b.Offer(9, []byte("x"), 0, 1); err != nil || !ok {
		t.Fatalf("Offer after drain: ok=%v err=%v", ok, err)
	}
}

func TestMPMCOfferRejectsInvalidArguments(t *testing.T) {
	b := newMPMCForTest(t, 256)
	if _, err := b.Offer(0, nil, 0, 0); err != ErrInvalidArgument {
		t.Fatalf("typeID 0: got %v", err)
	}
	if _, err := b.Offer(1, nil, 0, b.MaxPayloadLength()+1); err != ErrInvalidArgument {
		t.Fatalf("oversize payload: got %v", err)
	}
}

// TestMPMCConcurrentProducersSingleConsumer exercises §10's scenario S6:
// several producers racing Offer while one consumer drains everything
// that lands, with no lost or duplicated records.
func TestMPMCConcurrentProducersSingleConsumer(t *testing.T) {
	b := newMPMCForTest(t, 4096)
	const producers = 4
	const perProducer = 2000
	const total = producers * perProducer

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			payload := make([]byte, 8)
			for i := range perProducer {
				binary.NativeEndian.PutUint32(payload, uint32(p))
				binary.NativeEndian.PutUint32(payload[4:], uint32(i))
				for {
					ok, err := b.Offer(int32(p+1), payload, 0, len(payload))
					if err != nil && !IsInsufficientSpace(err) {
						t.Errorf("Offer: %v", err)
						return
					}
					if ok {
						break
					}
				}
			}
		}(p)
	}

	var delivered atomic.Int64
	perProducerSeen := make([][]bool, producers)
	for i := range perProducerSeen {
		perProducerSeen[i] = make([]bool, perProducer)
	}
	var mu sync.Mutex
	done := make(chan struct{})
	go func() {
		for delivered.Load() < total {
			n := b.Poll(func(typeID int32, view *ReadView) {
				p := int(typeID) - 1
				idx, _ := view.GetInt(4)
				mu.Lock()
				if perProducerSeen[p][idx] {
					t.Errorf("duplicate delivery for producer %d index %d", p, idx)
				}
				perProducerSeen[p][idx] = true
				mu.Unlock()
				delivered.Add(1)
			}, 64)
			if n == 0 {
				continue
			}
		}
		close(done)
	}()

	wg.Wait()
	<-done

	if delivered.Load() != total {
		t.Fatalf("delivered %d records, want %d", delivered.Load(), total)
	}
}

// TestMPMCMultipleConsumersPreserveSubmissionOrder exercises §10's scenario
// S6: four consumers draining concurrently while four producers race
// Offer. Every consumer contends for the same offConsumerPosition cell,
// so this is the only test in the suite that actually drives the CAS
// retry branch in pollCore. Per producer, records must still be observed
// in the order that producer submitted them.
func TestMPMCMultipleConsumersPreserveSubmissionOrder(t *testing.T) {
	b := newMPMCForTest(t, 4096)
	const producers = 4
	const consumers = 4
	const perProducer = 500
	const total = producers * perProducer

	var producerWG sync.WaitGroup
	for p := range producers {
		producerWG.Add(1)
		go func(p int) {
			defer producerWG.Done()
			payload := make([]byte, 8)
			for i := range perProducer {
				binary.NativeEndian.PutUint32(payload, uint32(p))
				binary.NativeEndian.PutUint32(payload[4:], uint32(i))
				for {
					ok, err := b.Offer(int32(p+1), payload, 0, len(payload))
					if err != nil && !IsInsufficientSpace(err) {
						t.Errorf("Offer: %v", err)
						return
					}
					if ok {
						break
					}
				}
			}
		}(p)
	}

	var delivered atomic.Int64
	seen := make([][]bool, producers)
	order := make([][]int32, producers)
	for i := range seen {
		seen[i] = make([]bool, perProducer)
	}
	var mu sync.Mutex

	var consumerWG sync.WaitGroup
	for range consumers {
		consumerWG.Add(1)
		go func() {
			defer consumerWG.Done()
			for delivered.Load() < total {
				n := b.Poll(func(typeID int32, view *ReadView) {
					p := int(typeID) - 1
					idx, _ := view.GetInt(4)
					mu.Lock()
					if seen[p][idx] {
						t.Errorf("duplicate delivery for producer %d index %d", p, idx)
					}
					seen[p][idx] = true
					order[p] = append(order[p], idx)
					mu.Unlock()
					delivered.Add(1)
				}, 1)
				if n == 0 {
					continue
				}
			}
		}()
	}

	producerWG.Wait()
	consumerWG.Wait()

	if delivered.Load() != total {
		t.Fatalf("delivered %d records, want %d", delivered.Load(), total)
	}
	for p, idxs := range order {
		for i := 1; i < len(idxs); i++ {
			if idxs[i] <= idxs[i-1] {
				t.Fatalf("producer %d: observed index %d after %d, want submission order preserved", p, idxs[i], idxs[i-1])
			}
		}
	}
}
