// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fixedpoint_test

import (
	"testing"

	"go.ringbase.dev/ringbuf/internal/fixedpoint"
)

func TestFromNanosAndBackRoundTrips(t *testing.T) {
	q := fixedpoint.FromNanos(1234)
	if got := q.Nanos(); got != 1234 {
		t.Fatalf("Nanos: got %d, want 1234", got)
	}
}

func TestDivAveragesWithoutFloatDrift(t *testing.T) {
	var sum fixedpoint.Q32
	const n = 1_000_000
	for i := int64(0); i < n; i++ {
		sum = sum.Add(fixedpoint.FromNanos(137))
	}
	avg := sum.Div(n)
	if got := avg.Nanos(); got != 137 {
		t.Fatalf("average: got %d, want 137", got)
	}
}

func TestAddAndSubAreInverse(t *testing.T) {
	a := fixedpoint.FromNanos(500)
	b := fixedpoint.FromNanos(200)
	if got := a.Add(b).Sub(b); got != a {
		t.Fatalf("Add then Sub: got %v, want %v", got, a)
	}
}
