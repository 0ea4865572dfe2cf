package objstream

import (
	"fmt"
	"io"
	"log/slog"
	"math"
)

var discardLogger = slog.New(slog.DiscardHandler)

// InputStream decodes a bounded region of a channel through a fixed-size
// buffer. The region is `remaining` bytes long starting at the channel's
// current position; the stream never reads beyond it.
//
// Buffer cursors satisfy 0 <= frontier <= limit <= bound <= BufferSize.
// The first error is latched and every later operation returns it.
// An InputStream is not safe for concurrent use.
type InputStream struct {
	r   io.Reader
	buf *[]byte // nil until the first fill

	frontier  int    // next byte to consume
	limit     int    // end of bytes valid for consumption
	bound     int    // end of bytes physically loaded
	mark      int    // saved frontier, shifted by every compaction
	remaining uint32 // bytes of the region not yet loaded

	count int64 // total bytes consumed
	err   error
	log   *slog.Logger
}

// NewInputStream creates an InputStream over the next remaining bytes of r.
func NewInputStream(r io.Reader, remaining uint32) (*InputStream, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	return &InputStream{r: r, remaining: remaining, log: discardLogger}, nil
}

var _ io.Reader = (*InputStream)(nil)

// WithLogger sets the logger receiving debug records and returns the stream
// for chaining.
func (in *InputStream) WithLogger(l *slog.Logger) *InputStream {
	if l == nil {
		l = discardLogger
	}
	in.log = l
	return in
}

// Close releases the internal buffer. The channel is not closed; it belongs
// to the caller.
func (in *InputStream) Close() error {
	putBuffer(in.buf)
	in.buf = nil
	in.frontier, in.limit, in.bound, in.mark = 0, 0, 0, 0
	in.setError(ErrClosed)
	return nil
}

func (in *InputStream) Count() int64 { return in.count }
func (in *InputStream) Err() error   { return in.err }

// Remaining returns the number of region bytes not yet loaded from the channel.
func (in *InputStream) Remaining() uint32 { return in.remaining }

// Buffered returns the number of loaded bytes not yet consumed.
func (in *InputStream) Buffered() int { return in.limit - in.frontier }

// Exhausted reports whether every byte of the region has been consumed.
func (in *InputStream) Exhausted() bool {
	return in.remaining == 0 && in.frontier == in.limit
}

// setError records the first non-nil error.
func (in *InputStream) setError(err error) {
	if in.err == nil && err != nil {
		in.err = err
		in.log.Debug("objstream: input failed", "error", err, "count", in.count, "remaining", in.remaining)
	}
}

func (in *InputStream) checkCursors() {
	if in.frontier < 0 || in.frontier > in.limit || in.limit > in.bound || in.bound > BufferSize {
		panic(fmt.Sprintf("objstream: input cursors out of order: frontier=%d limit=%d bound=%d", in.frontier, in.limit, in.bound))
	}
}

// fill compacts unconsumed bytes to the front of the buffer and loads as much
// of the region as fits behind them.
func (in *InputStream) fill() error {
	if in.remaining == 0 {
		return ErrEndOfStream
	}
	if in.buf == nil {
		in.buf = getBuffer()
	}
	buf := *in.buf

	copy(buf, buf[in.frontier:in.bound])
	in.limit -= in.frontier
	in.bound -= in.frontier
	in.mark -= in.frontier
	in.frontier = 0

	n := int(min(int64(in.remaining), int64(BufferSize-in.bound)))
	if _, err := io.ReadFull(in.r, buf[in.bound:in.bound+n]); err != nil {
		return newChannelError("fill", err)
	}
	in.bound += n
	in.limit += n
	in.remaining -= uint32(n)
	in.checkCursors()

	in.log.Debug("objstream: fill", "loaded", n, "buffered", in.limit-in.frontier, "remaining", in.remaining)
	return nil
}

// read consumes exactly n bytes, copying them into dst unless dst is nil.
func (in *InputStream) read(dst []byte, n int64) error {
	if in.err != nil {
		return in.err
	}
	for n > 0 {
		if in.frontier == in.limit {
			if err := in.fill(); err != nil {
				in.setError(err)
				return err
			}
		}
		available := int(min(int64(in.limit-in.frontier), n))
		if dst != nil {
			dst = dst[copy(dst, (*in.buf)[in.frontier:in.frontier+available]):]
		}
		in.frontier += available
		in.count += int64(available)
		n -= int64(available)
	}
	return nil
}

// ReadFull fills p from the stream.
func (in *InputStream) ReadFull(p []byte) error {
	return in.read(p, int64(len(p)))
}

// Discard consumes and drops n bytes.
func (in *InputStream) Discard(n int64) error {
	if n < 0 {
		return ErrInvalidOffset
	}
	return in.read(nil, n)
}

// Read implements io.Reader. It returns at most the bytes that can be served
// with one fill and reports io.EOF once the region is exhausted.
func (in *InputStream) Read(p []byte) (int, error) {
	if in.err != nil {
		return 0, in.err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if in.frontier == in.limit {
		if in.remaining == 0 {
			return 0, io.EOF
		}
		if err := in.fill(); err != nil {
			in.setError(err)
			return 0, err
		}
	}
	n := copy(p, (*in.buf)[in.frontier:in.limit])
	in.frontier += n
	in.count += int64(n)
	return n, nil
}

// Flush discards every unread byte of the region, leaving the stream exhausted.
func (in *InputStream) Flush() error {
	return in.read(nil, int64(in.limit-in.frontier)+int64(in.remaining))
}

// Mark saves the current position for a later Skip.
func (in *InputStream) Mark() {
	in.mark = in.frontier
}

// Skip advances the stream to length bytes past the marked position. It fails
// with ErrInvalidOffset if that position has already been passed.
func (in *InputStream) Skip(length uint32) error {
	if in.err != nil {
		return in.err
	}
	target := int64(in.mark-in.frontier) + int64(length)
	if target < 0 {
		in.setError(fmt.Errorf("%w: %d bytes behind", ErrInvalidOffset, -target))
		return in.err
	}
	return in.read(nil, target)
}

// ReadTag decodes a tag header.
func (in *InputStream) ReadTag() (Tag, error) {
	first, err := in.ReadU32()
	if err != nil {
		return Tag{}, err
	}
	var second uint32
	if isLongTag(first) {
		if second, err = in.ReadU32(); err != nil {
			return Tag{}, err
		}
	}
	return decodeTag(first, second), nil
}

// --- Primitive Read Operations ---

func (in *InputStream) ReadU8() (uint8, error) {
	var b [1]byte
	err := in.read(b[:], 1)
	return b[0], err
}

func (in *InputStream) ReadU16() (uint16, error) {
	var b [2]byte
	if err := in.read(b[:], 2); err != nil {
		return 0, err
	}
	return getUint[uint16](b[:]), nil
}

func (in *InputStream) ReadU32() (uint32, error) {
	var b [4]byte
	if err := in.read(b[:], 4); err != nil {
		return 0, err
	}
	return getUint[uint32](b[:]), nil
}

func (in *InputStream) ReadU64() (uint64, error) {
	var b [8]byte
	if err := in.read(b[:], 8); err != nil {
		return 0, err
	}
	return getUint[uint64](b[:]), nil
}

func (in *InputStream) ReadS16() (int16, error) {
	v, err := in.ReadU16()
	return int16(v), err
}

func (in *InputStream) ReadFloat32() (float32, error) {
	v, err := in.ReadU32()
	return math.Float32frombits(v), err
}

func (in *InputStream) ReadFloat64() (float64, error) {
	v, err := in.ReadU64()
	return math.Float64frombits(v), err
}

// ReadCString reads a NUL-terminated string. The empty string stands for
// the absent value; both share the single-byte encoding.
func (in *InputStream) ReadCString() (string, error) {
	if in.err != nil {
		return "", in.err
	}
	var text []byte
	for {
		if in.frontier == in.limit {
			if err := in.fill(); err != nil {
				in.setError(err)
				return "", err
			}
		}
		n, found := scanCString((*in.buf)[in.frontier:in.limit])
		chunk := (*in.buf)[in.frontier : in.frontier+n]
		if found {
			chunk = chunk[:n-1]
		}
		text = append(text, chunk...)
		in.frontier += n
		in.count += int64(n)
		if found {
			return string(text), nil
		}
	}
}

// ReadNameRef reads a C string and interns it through names.
func (in *InputStream) ReadNameRef(names Interner) (*Name, error) {
	text, err := in.ReadCString()
	if err != nil {
		return nil, err
	}
	return names.Intern(text), nil
}

func (in *InputStream) ReadColor() (Color, error) {
	var b [ColorSize]byte
	if err := in.read(b[:], ColorSize); err != nil {
		return Color{}, err
	}
	return Color{
		Red:   getUint[uint16](b[0:]),
		Green: getUint[uint16](b[2:]),
		Blue:  getUint[uint16](b[4:]),
	}, nil
}
