// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringbuf

import (
	"encoding/binary"
	"math"
)

// bufView is the shared bounds-checked accessor core for ReadView and
// MutableView. It is a flyweight: bind rebinds it to a new window without
// allocating, so one instance can be reused across every Poll callback.
type bufView struct {
	b []byte
}

// bind rebinds the view to b. The view is only valid until the next bind
// or until the backing region is mutated elsewhere.
func (v *bufView) bind(b []byte) {
	v.b = b
}

// Length returns the number of bytes currently bound to the view.
func (v *bufView) Length() int {
	return len(v.b)
}

func (v *bufView) check(index, size int) error {
	if index < 0 || size < 0 || index+size > len(v.b) {
		return ErrOutOfBounds
	}
	return nil
}

func (v *bufView) getByte(index int) (byte, error) {
	if err := v.check(index, 1); err != nil {
		return 0, err
	}
	return v.b[index], nil
}

func (v *bufView) getBytes(index int, dst []byte, dstOffset, length int) error {
	if err := v.check(index, length); err != nil {
		return err
	}
	if dstOffset < 0 || length < 0 || dstOffset+length > len(dst) {
		return ErrOutOfBounds
	}
	copy(dst[dstOffset:dstOffset+length], v.b[index:index+length])
	return nil
}

func (v *bufView) getShort(index int) (int16, error) {
	if err := v.check(index, 2); err != nil {
		return 0, err
	}
	return int16(binary.NativeEndian.Uint16(v.b[index:])), nil
}

func (v *bufView) getInt(index int) (int32, error) {
	if err := v.check(index, 4); err != nil {
		return 0, err
	}
	return int32(binary.NativeEndian.Uint32(v.b[index:])), nil
}

func (v *bufView) getLong(index int) (int64, error) {
	if err := v.check(index, 8); err != nil {
		return 0, err
	}
	return int64(binary.NativeEndian.Uint64(v.b[index:])), nil
}

func (v *bufView) getFloat(index int) (float32, error) {
	raw, err := v.getInt(index)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(raw)), nil
}

func (v *bufView) getDouble(index int) (float64, error) {
	raw, err := v.getLong(index)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(raw)), nil
}

func (v *bufView) getStringASCII(index, length int) (string, error) {
	if err := v.check(index, length); err != nil {
		return "", err
	}
	return string(v.b[index : index+length]), nil
}

func (v *bufView) putByte(index int, value byte) error {
	if err := v.check(index, 1); err != nil {
		return err
	}
	v.b[index] = value
	return nil
}

func (v *bufView) putBytes(index int, src []byte, srcOffset, length int) error {
	if err := v.check(index, length); err != nil {
		return err
	}
	if srcOffset < 0 || length < 0 || srcOffset+length > len(src) {
		return ErrOutOfBounds
	}
	copy(v.b[index:index+length], src[srcOffset:srcOffset+length])
	return nil
}

func (v *bufView) putShort(index int, value int16) error {
	if err := v.check(index, 2); err != nil {
		return err
	}
	binary.NativeEndian.PutUint16(v.b[index:], uint16(value))
	return nil
}

func (v *bufView) putInt(index int, value int32) error {
	if err := v.check(index, 4); err != nil {
		return err
	}
	binary.NativeEndian.PutUint32(v.b[index:], uint32(value))
	return nil
}

func (v *bufView) putLong(index int, value int64) error {
	if err := v.check(index, 8); err != nil {
		return err
	}
	binary.NativeEndian.PutUint64(v.b[index:], uint64(value))
	return nil
}

func (v *bufView) putFloat(index int, value float32) error {
	return v.putInt(index, int32(math.Float32bits(value)))
}

func (v *bufView) putDouble(index int, value float64) error {
	return v.putLong(index, int64(math.Float64bits(value)))
}

func (v *bufView) putStringASCII(index int, value string) error {
	if err := v.check(index, len(value)); err != nil {
		return err
	}
	copy(v.b[index:index+len(value)], value)
	return nil
}

// ReadView is a read-only flyweight over a (base, length) byte window. A
// consumer callback receives one per invocation; the view is only valid
// for the duration of that call and must not be retained.
type ReadView struct {
	bufView
}

// Length returns the number of bytes available through this view.
func (v *ReadView) Length() int { return v.bufView.Length() }

// GetByte returns the byte at index.
func (v *ReadView) GetByte(index int) (byte, error) { return v.bufView.getByte(index) }

// GetBytes copies length bytes starting at index into dst[dstOffset:].
func (v *ReadView) GetBytes(index int, dst []byte, dstOffset, length int) error {
	return v.bufView.getBytes(index, dst, dstOffset, length)
}

// GetShort reads a native-endian int16 at index.
func (v *ReadView) GetShort(index int) (int16, error) { return v.bufView.getShort(index) }

// GetInt reads a native-endian int32 at index.
func (v *ReadView) GetInt(index int) (int32, error) { return v.bufView.getInt(index) }

// GetLong reads a native-endian int64 at index.
func (v *ReadView) GetLong(index int) (int64, error) { return v.bufView.getLong(index) }

// GetFloat reads a native-endian IEEE-754 float32 at index.
func (v *ReadView) GetFloat(index int) (float32, error) { return v.bufView.getFloat(index) }

// GetDouble reads a native-endian IEEE-754 float64 at index.
func (v *ReadView) GetDouble(index int) (float64, error) { return v.bufView.getDouble(index) }

// GetStringASCII returns length bytes starting at index, interpreted as
// ASCII/Latin-1 — a byte-for-byte copy into a Go string.
func (v *ReadView) GetStringASCII(index, length int) (string, error) {
	return v.bufView.getStringASCII(index, length)
}

// GetString returns length bytes starting at index as a Go string. The
// bytes are copied as they are; they are not validated as UTF-8.
func (v *ReadView) GetString(index, length int) (string, error) {
	s, err := v.bufView.getStringASCII(index, length)
	return s, err
}

// MutableView is a writable flyweight over a (base, length) byte window,
// bound to the payload region a producer reserved via Claim.
type MutableView struct {
	bufView
}

// Length returns the number of bytes available through this view.
func (v *MutableView) Length() int { return v.bufView.Length() }

// PutByte writes value at index.
func (v *MutableView) PutByte(index int, value byte) error { return v.bufView.putByte(index, value) }

// PutBytes copies length bytes from src[srcOffset:] to index.
func (v *MutableView) PutBytes(index int, src []byte, srcOffset, length int) error {
	return v.bufView.putBytes(index, src, srcOffset, length)
}

// PutShort writes a native-endian int16 at index.
func (v *MutableView) PutShort(index int, value int16) error { return v.bufView.putShort(index, value) }

// PutInt writes a native-endian int32 at index.
func (v *MutableView) PutInt(index int, value int32) error { return v.bufView.putInt(index, value) }

// PutLong writes a native-endian int64 at index.
func (v *MutableView) PutLong(index int, value int64) error { return v.bufView.putLong(index, value) }

// PutFloat writes a native-endian IEEE-754 float32 at index.
func (v *MutableView) PutFloat(index int, value float32) error {
	return v.bufView.putFloat(index, value)
}

// PutDouble writes a native-endian IEEE-754 float64 at index.
func (v *MutableView) PutDouble(index int, value float64) error {
	return v.bufView.putDouble(index, value)
}

// PutStringASCII writes value byte-for-byte starting at index.
func (v *MutableView) PutStringASCII(index int, value string) error {
	return v.bufView.putStringASCII(index, value)
}

// GetByte returns the byte at index (mutable views can also be read back).
func (v *MutableView) GetByte(index int) (byte, error) { return v.bufView.getByte(index) }

// GetBytes copies length bytes starting at index into dst[dstOffset:].
func (v *MutableView) GetBytes(index int, dst []byte, dstOffset, length int) error {
	return v.bufView.getBytes(index, dst, dstOffset, length)
}
