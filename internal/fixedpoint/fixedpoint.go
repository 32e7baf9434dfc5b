// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fixedpoint provides Q32.32 fixed-point arithmetic: an int64
// with the low 32 bits treated as a fractional part. ringbufctl's bench
// harness uses it to average nanoseconds/op across millions of samples
// without the rounding drift a running float64 average accumulates.
package fixedpoint

// Q32 is a Q32.32 fixed-point value: 32 integer bits, 32 fractional
// bits, stored in an int64.
type Q32 int64

const fractionalBits = 32

// FromNanos converts a whole-nanosecond count to a Q32 value.
func FromNanos(n int64) Q32 {
	return Q32(n << fractionalBits)
}

// FromInt converts a whole number to a Q32 value.
func FromInt(n int64) Q32 {
	return Q32(n << fractionalBits)
}

// Nanos truncates q back to a whole-nanosecond count.
func (q Q32) Nanos() int64 {
	return int64(q) >> fractionalBits
}

// Add returns q + other.
func (q Q32) Add(other Q32) Q32 {
	return q + other
}

// Sub returns q - other.
func (q Q32) Sub(other Q32) Q32 {
	return q - other
}

// Div returns q / n, rounding toward zero on the fractional remainder.
func (q Q32) Div(n int64) Q32 {
	return Q32(int64(q) / n)
}

// MulInt returns q * n.
func (q Q32) MulInt(n int64) Q32 {
	return Q32(int64(q) * n)
}
