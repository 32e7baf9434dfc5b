// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringbuf

// headerSize is the fixed width, in bytes, of a record header.
const headerSize = 8

// Padding is the reserved type_id that marks a wrap-around filler record.
// Records carrying this type_id are never delivered to a consumer callback.
const Padding int32 = -1

// packHeader combines a record size and type_id into a single 64-bit
// header word. size is carried in the high 32 bits so its sign survives
// an arithmetic right shift: size > 0 means committed, size < 0 means
// in-progress (reserved but not yet published), size == 0 means empty.
func packHeader(size int32, typeID int32) uint64 {
	return uint64(uint32(size))<<32 | uint64(uint32(typeID))
}

// unpackHeader splits a header word back into its size and type_id.
func unpackHeader(header uint64) (size int32, typeID int32) {
	size = int32(int64(header) >> 32)
	typeID = int32(uint32(header))
	return size, typeID
}

// alignUp rounds n up to the next multiple of align. align must be a
// power of two.
func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// isPowerOfTwo reports whether n is a power of two.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
