// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringbuf

import "testing"

func newSPSCForTest(t *testing.T, dataSize int) *SPSCRingBuffer {
	t.Helper()
	region, err := Allocate(dataSize, 64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	return NewSPSCRingBuffer(region)
}

func TestSPSCOfferPollRoundTrip(t *testing.T) {
	b := newSPSCForTest(t, 256)
	payload := []byte("hello ring buffer")

	ok, err := b.Offer(1, payload, 0, len(payload))
	if err != nil || !ok {
		t.Fatalf("Offer: ok=%v err=%v", ok, err)
	}

	var got []byte
	var gotType int32
	n := b.Poll(func(typeID int32, view *ReadView) {
		gotType = typeID
		got = make([]byte, view.Length())
		if err := view.GetBytes(0, got, 0, view.Length()); err != nil {
			t.Fatalf("GetBytes: %v", err)
		}
	}, 10)

	if n != 1 {
		t.Fatalf("Poll count: got %d, want 1", n)
	}
	if gotType != 1 {
		t.Fatalf("typeID: got %d, want 1", gotType)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload: got %q, want %q", got, payload)
	}
	if b.ConsumerSeq() != b.ProducerSeq() {
		t.Fatalf("consumer/producer seq mismatch after full drain")
	}
}

func TestSPSCFillAndDrain(t *testing.T) {
	b := newSPSCForTest(t, 256)
	payload := []byte("x")

	delivered := 0
	for {
		ok, err := b.Offer(2, payload, 0, len(payload))
		if !ok {
			if !IsInsufficientSpace(err) {
				t.Fatalf("Offer: %v", err)
			}
			break
		}
		if err != nil {
			t.Fatalf("Offer: %v", err)
		}
		delivered++
	}
	if delivered == 0 {
		t.Fatalf("expected at least one record to fit")
	}

	n := b.PollAll(func(int32, *ReadView) {})
	if n != delivered {
		t.Fatalf("PollAll: got %d, want %d", n, delivered)
	}
}

func TestSPSCWrapWithPadding(t *testing.T) {
	b := newSPSCForTest(t, 64)
	big := make([]byte, 40)

	if ok, err := b.Offer(3, big, 0, len(big)); err != nil || !ok {
		t.Fatalf("first Offer: ok=%v err=%v", ok, err)
	}
	b.PollAll(func(int32, *ReadView) {})

	// Second offer of similar size should now wrap and emit a padding
	// record that the consumer must skip transparently.
	if ok, err := b.Offer(4, big, 0, len(big)); err != nil || !ok {
		t.Fatalf("second Offer: ok=%v err=%v", ok, err)
	}

	var typeIDs []int32
	b.PollAll(func(typeID int32, _ *ReadView) {
		typeIDs = append(typeIDs, typeID)
	})
	if len(typeIDs) != 1 || typeIDs[0] != 4 {
		t.Fatalf("expected exactly one visible record of type 4, got %v", typeIDs)
	}
}

func TestSPSCClaimPublishZeroCopy(t *testing.T) {
	b := newSPSCForTest(t, 256)

	slot, view, ok, err := b.Claim(5, 8)
	if err != nil || !ok {
		t.Fatalf("Claim: ok=%v err=%v", ok, err)
	}
	if err := view.PutLong(0, 0x0102030405060708); err != nil {
		t.Fatalf("PutLong: %v", err)
	}
	if err := b.Publish(slot); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	var got int64
	n := b.Poll(func(typeID int32, v *ReadView) {
		got, _ = v.GetLong(0)
		if typeID != 5 {
			t.Fatalf("typeID: got %d, want 5", typeID)
		}
	}, 1)
	if n != 1 {
		t.Fatalf("Poll count: got %d, want 1", n)
	}
	if got != 0x0102030405060708 {
		t.Fatalf("payload: got %x", got)
	}
}

func TestSPSCAbandonSkipsRecord(t *testing.T) {
	b := newSPSCForTest(t, 256)

	slot, _, ok, err := b.Claim(6, 8)
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
	if b.ConsumerSeq() != b.ProducerSeq() {
		t.Fatalf("abandoned record's space was not accounted as consumed")
	}
}

func TestSPSCPublishWithoutClaimIsIllegalState(t *testing.T) {
	b := newSPSCForTest(t, 256)
	if err := b.Publish(0); err != ErrIllegalState {
		t.Fatalf("Publish without Claim: got %v, want ErrIllegalState", err)
	}
}

func TestSPSCDoubleClaimIsIllegalState(t *testing.T) {
	b := newSPSCForTest(t, 256)
	if _, _, ok, err := b.Claim(1, 8); !ok || err != nil {
		t.Fatalf("first Claim: ok=%v err=%v", ok, err)
	}
	if _, _, ok, err := b.Claim(1, 8); ok || err != ErrIllegalState {
		t.Fatalf("second Claim: ok=%v err=%v, want ErrIllegalState", ok, err)
	}
}

func TestSPSCOfferRejectsInvalidArguments(t *testing.T) {
	b := newSPSCForTest(t, 256)
	if _, err := b.Offer(0, nil, 0, 0); err != ErrInvalidArgument {
		t.Fatalf("typeID 0: got %v", err)
	}
	if _, err := b.Offer(1, nil, 0, b.MaxPayloadLength()+1); err != ErrInvalidArgument {
		t.Fatalf("oversize payload: got %v", err)
	}
}

func TestSPSCControlledPollAbortWithholdsCommit(t *testing.T) {
	b := newSPSCForTest(t, 256)
	b.Offer(1, []byte("a"), 0, 1)
	b.Offer(2, []byte("b"), 0, 1)

	before := b.ConsumerSeq()
	n := b.ControlledPoll(func(int32, *ReadView) ConsumerAction {
		return ConsumerActionAbort
	}, 10)
	if n != 0 {
		t.Fatalf("ControlledPoll count: got %d, want 0", n)
	}
	if b.ConsumerSeq() != before {
		t.Fatalf("Abort must not advance consumer_position")
	}

	// The same two records must still be deliverable.
	n = b.PollAll(func(int32, *ReadView) {})
	if n != 2 {
		t.Fatalf("PollAll after abort: got %d, want 2", n)
	}
}

func TestSPSCOfferZeroLengthPayloadRoundTrips(t *testing.T) {
	b := newSPSCForTest(t, 256)
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

func TestSPSCOfferExactlyMaxPayloadFillsBuffer(t *testing.T) {
	b := newSPSCForTest(t, 256)
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
	n := b.PollAll(func(typeID int32, view *ReadView) {
		if typeID != 8 {
			t.Fatalf("typeID: got %d, want 8", typeID)
		}
		got = make([]byte, view.Length())
		view.GetBytes(0, got, 0, view.Length())
	})
	if n != 1 {
		t.Fatalf("PollAll: got %d, want 1", n)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload round trip mismatch")
	}

	// Now that the consumer has drained, the buffer accepts offers again.
	if ok, err := b.Offer(9, []byte("x"), 0, 1); err != nil || !ok {
		t.Fatalf("Offer after drain: ok=%v err=%v", ok, err)
	}
}

func TestSPSCUtilizationTracksOutstandingRecords(t *testing.T) {
	b := newSPSCForTest(t, 256)
	if u := b.Utilization(); u != 0 {
		t.Fatalf("Utilization on empty buffer: got %d, want 0", u)
	}
	b.Offer(1, []byte("payload"), 0, 7)
	if u := b.Utilization(); u == 0 {
		t.Fatalf("Utilization after Offer: got 0, want > 0")
	}
	b.PollAll(func(int32, *ReadView) {})
	if u := b.Utilization(); u != 0 {
		t.Fatalf("Utilization after drain: got %d, want 0", u)
	}
}
