package objstream

import "sync"

// bufPool recycles the fixed-size stream buffers so that short-lived streams
// (one per object load or save) do not allocate 16KB each time.
var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, BufferSize)
		return &b
	},
}

func getBuffer() *[]byte { return bufPool.Get().(*[]byte) }

func putBuffer(b *[]byte) {
	if b != nil && cap(*b) == BufferSize {
		*b = (*b)[:BufferSize]
		bufPool.Put(b)
	}
}
