package objstream

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Network is the wire byte order for every multi-byte value in the stream.
var Network = binary.BigEndian

// BufferSize is the fixed capacity of the internal stream buffers.
const BufferSize = 16384

// widthOf returns the encoded width in bytes of an unsigned integer type.
func widthOf[T constraints.Unsigned]() int {
	return bits.Len64(uint64(^T(0))) / 8
}

// putUint stores v into b most significant byte first and returns the
// number of bytes written. The result does not depend on the host byte order.
func putUint[T constraints.Unsigned](b []byte, v T) int {
	n := widthOf[T]()
	_ = b[n-1]
	for i := n - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return n
}

// getUint is the inverse of putUint.
func getUint[T constraints.Unsigned](b []byte) T {
	n := widthOf[T]()
	_ = b[n-1]
	var v T
	for i := 0; i < n; i++ {
		v = v<<8 | T(b[i])
	}
	return v
}
