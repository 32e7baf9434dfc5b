// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package strbuf provides a reusable, byte-backed ASCII string builder.
// ringbufctl's bench harness renders its end-of-run summary line with it.
// Reset keeps the backing array, so a reused Builder can render further
// lines without growing a new one or running a fmt.Sprintf format-scan.
package strbuf

import "strconv"

// Builder accumulates ASCII text into a reused backing array.
type Builder struct {
	buf []byte
}

// Reset empties the builder without releasing its backing array.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// WriteString appends s.
func (b *Builder) WriteString(s string) *Builder {
	b.buf = append(b.buf, s...)
	return b
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) *Builder {
	b.buf = append(b.buf, c)
	return b
}

// WriteInt appends the base-10 representation of n.
func (b *Builder) WriteInt(n int64) *Builder {
	b.buf = strconv.AppendInt(b.buf, n, 10)
	return b
}

// WriteFloat appends f with prec digits after the decimal point.
func (b *Builder) WriteFloat(f float64, prec int) *Builder {
	b.buf = strconv.AppendFloat(b.buf, f, 'f', prec, 64)
	return b
}

// String returns the accumulated text. The returned string is a copy;
// it remains valid across subsequent Reset/Write calls.
func (b *Builder) String() string {
	return string(b.buf)
}

// Len returns the number of bytes accumulated so far.
func (b *Builder) Len() int {
	return len(b.buf)
}
