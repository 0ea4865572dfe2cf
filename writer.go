package objstream

import (
	"fmt"
	"io"
	"log/slog"
	"math"
)

// OutputStream encodes values into a fixed-size buffer and drains it to the
// channel whenever it fills or on Flush.
//
// The first error is latched and every later operation returns it; after an
// error the stream must be abandoned. An OutputStream is not safe for
// concurrent use.
type OutputStream struct {
	w   io.Writer
	buf *[]byte

	frontier int // next free byte
	mark     int // bytes being drained by the current flush

	count int64 // total bytes accepted
	err   error
	log   *slog.Logger
}

var (
	_ io.Writer       = (*OutputStream)(nil)
	_ io.StringWriter = (*OutputStream)(nil)
)

// NewOutputStream creates an OutputStream writing to w.
func NewOutputStream(w io.Writer) (*OutputStream, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	return &OutputStream{w: w, buf: getBuffer(), log: discardLogger}, nil
}

// WithLogger sets the logger receiving debug records and returns the stream
// for chaining.
func (out *OutputStream) WithLogger(l *slog.Logger) *OutputStream {
	if l == nil {
		l = discardLogger
	}
	out.log = l
	return out
}

// Close releases the internal buffer without flushing it. Call Flush(true)
// first to deliver buffered bytes.
func (out *OutputStream) Close() error {
	putBuffer(out.buf)
	out.buf = nil
	out.frontier, out.mark = 0, 0
	out.setError(ErrClosed)
	return nil
}

func (out *OutputStream) Count() int64 { return out.count }
func (out *OutputStream) Err() error   { return out.err }

// Buffered returns the number of bytes waiting for the next flush.
func (out *OutputStream) Buffered() int { return out.frontier }

// setError records the first non-nil error.
func (out *OutputStream) setError(err error) {
	if out.err == nil && err != nil {
		out.err = err
		out.log.Debug("objstream: output failed", "error", err, "count", out.count)
	}
}

// Write implements io.Writer. All of p is buffered unless a flush fails.
func (out *OutputStream) Write(p []byte) (int, error) {
	if out.err != nil {
		return 0, out.err
	}
	written := 0
	for len(p) > 0 {
		if out.frontier == BufferSize {
			if err := out.Flush(false); err != nil {
				return written, err
			}
		}
		n := copy((*out.buf)[out.frontier:], p)
		p = p[n:]
		out.frontier += n
		out.count += int64(n)
		written += n
	}
	return written, nil
}

// WriteString implements io.StringWriter without copying s first.
func (out *OutputStream) WriteString(s string) (int, error) {
	if out.err != nil {
		return 0, out.err
	}
	written := 0
	for len(s) > 0 {
		if out.frontier == BufferSize {
			if err := out.Flush(false); err != nil {
				return written, err
			}
		}
		n := copy((*out.buf)[out.frontier:], s)
		s = s[n:]
		out.frontier += n
		out.count += int64(n)
		written += n
	}
	return written, nil
}

// Flush drains the buffer to the channel. final marks the last flush of a
// pass; it does not change what is written.
func (out *OutputStream) Flush(final bool) error {
	if out.err != nil {
		return out.err
	}
	out.mark = out.frontier
	if out.mark > 0 {
		buf := *out.buf
		n, err := out.w.Write(buf[:out.mark])
		if err == nil && n != out.mark {
			err = io.ErrShortWrite
		}
		if err != nil {
			out.setError(newChannelError("flush", err))
			return out.err
		}
		copy(buf, buf[out.mark:out.frontier])
	}
	out.frontier -= out.mark
	if out.frontier < 0 || out.frontier > BufferSize {
		panic(fmt.Sprintf("objstream: output frontier out of range: %d", out.frontier))
	}
	out.log.Debug("objstream: flush", "drained", out.mark, "final", final, "count", out.count)
	out.mark = 0
	return nil
}

func (out *OutputStream) writeN(b []byte) error {
	_, err := out.Write(b)
	return err
}

// WriteTag encodes a tag header for a record of length bytes.
func (out *OutputStream) WriteTag(flags, length uint32) error {
	if out.err != nil {
		return out.err
	}
	var b [LongTagSize]byte
	h, err := AppendTag(b[:0], flags, length)
	if err != nil {
		return fmt.Errorf("%w: length %d", err, length)
	}
	return out.writeN(h)
}

// --- Primitive Write Operations ---

func (out *OutputStream) WriteU8(v uint8) error {
	return out.writeN([]byte{v})
}

func (out *OutputStream) WriteU16(v uint16) error {
	var b [2]byte
	putUint(b[:], v)
	return out.writeN(b[:])
}

func (out *OutputStream) WriteU32(v uint32) error {
	var b [4]byte
	putUint(b[:], v)
	return out.writeN(b[:])
}

func (out *OutputStream) WriteU64(v uint64) error {
	var b [8]byte
	putUint(b[:], v)
	return out.writeN(b[:])
}

func (out *OutputStream) WriteS16(v int16) error {
	return out.WriteU16(uint16(v))
}

func (out *OutputStream) WriteFloat32(v float32) error {
	return out.WriteU32(math.Float32bits(v))
}

func (out *OutputStream) WriteFloat64(v float64) error {
	return out.WriteU64(math.Float64bits(v))
}

// WriteCString writes s followed by a NUL terminator. The empty string
// encodes as the terminator alone, the canonical absent value.
func (out *OutputStream) WriteCString(s string) error {
	if out.err != nil {
		return out.err
	}
	if err := checkCString(s); err != nil {
		return err
	}
	if _, err := out.WriteString(s); err != nil {
		return err
	}
	return out.WriteU8(0)
}

// WriteNameRef writes the text of n as a C string. A nil name writes the
// empty string.
func (out *OutputStream) WriteNameRef(n *Name) error {
	return out.WriteCString(n.Text())
}

func (out *OutputStream) WriteColor(c Color) error {
	var b [ColorSize]byte
	putUint(b[0:], c.Red)
	putUint(b[2:], c.Green)
	putUint(b[4:], c.Blue)
	return out.writeN(b[:])
}
