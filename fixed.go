package objstream

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// sizeCache avoids the cost of reflection in `binary.Size` on every call.
var sizeCache = xsync.NewMap[reflect.Type, int]()

// Fixed is a Record for any struct `Payload` composed of fixed-size fields,
// encoded field by field in network byte order.
//
// Constraint: `Payload` MUST NOT contain slices, maps or strings, as this will
// cause `binary.Size` to fail.
type Fixed[Payload any] struct {
	Payload Payload
}

var _ Record = (*Fixed[struct{}])(nil)

// Size returns the fixed size of the payload in bytes, or -1 if the payload
// is not fixed-size.
func (c *Fixed[Payload]) Size() int {
	payloadType := reflect.TypeOf((*Payload)(nil)).Elem()
	if size, ok := sizeCache.Load(payloadType); ok {
		return size
	}
	size := binary.Size(&c.Payload)
	sizeCache.Store(payloadType, size)
	return size
}

// Save writes the payload.
func (c *Fixed[Payload]) Save(out *OutputStream) error {
	return binary.Write(out, Network, &c.Payload)
}

// Load reads the payload. A body shorter than the payload is an error; a
// longer body is left for ReadRecord to skip.
func (c *Fixed[Payload]) Load(in *InputStream, length uint32) error {
	if size := c.Size(); size < 0 || int64(length) < int64(size) {
		return fmt.Errorf("%w: body of %d bytes, payload needs %d", ErrEndOfStream, length, size)
	}
	return binary.Read(in, Network, &c.Payload)
}
