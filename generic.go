package objstream

import (
	"fmt"
	"math"
)

// headerSize returns the tag header length WriteTag emits for (flags, length).
func headerSize(flags, length uint32) int {
	if isShortTag(flags, length) {
		return ShortTagSize
	}
	return LongTagSize
}

// Marshal encodes rec as a single tagged record.
func Marshal(flags uint32, rec Record) ([]byte, error) {
	size := rec.Size()
	if size < 0 || int64(size) > MaxTagLength {
		return nil, fmt.Errorf("%w: record size %d", ErrTagOverflow, size)
	}
	w := NewBytesWriter(make([]byte, headerSize(flags, uint32(size))+size))

	out, err := NewOutputStream(w)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	if err := WriteRecord(out, flags, rec); err != nil {
		return nil, err
	}
	if err := out.Flush(true); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Unmarshal decodes a single tagged record from data into rec. Bytes left
// after the record are rejected with ErrTrailingData.
func Unmarshal(data []byte, rec Loader) (Tag, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return Tag{}, fmt.Errorf("%w: %d bytes", ErrTagOverflow, len(data))
	}
	in, err := NewInputStream(NewBytesReader(data), uint32(len(data)))
	if err != nil {
		return Tag{}, err
	}
	defer in.Close()

	tag, err := ReadRecord(in, rec)
	if err != nil {
		return tag, err
	}
	if !in.Exhausted() {
		return tag, fmt.Errorf("%w: %d bytes", ErrTrailingData, int64(len(data))-in.Count())
	}
	return tag, nil
}
