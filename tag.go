package objstream

// Tag header layout. The first word is always present:
//
//	bit 31      long-form discriminator
//	bits 8..30  low 23 bits of length
//	bits 0..7   low 8 bits of flags
//
// The long form appends a second word:
//
//	bits 24..31 length >> 23
//	bits 0..23  flags >> 8
const (
	tagFlagsBits  = 8
	tagLengthBits = 23

	tagFlagsMask  = 1<<tagFlagsBits - 1  // 0xFF
	tagLengthMask = 1<<tagLengthBits - 1 // 0x7FFFFF
	tagLongForm   = 1 << 31

	tagExtFlagsMask  = 0x00FFFFFF
	tagExtLengthMask = 0xFF000000

	// ShortTagSize and LongTagSize are the encoded header lengths.
	ShortTagSize = 4
	LongTagSize  = 8

	// MaxTagLength is the largest record length a tag can carry.
	MaxTagLength = 1<<31 - 1
)

// Tag is a decoded tag header.
type Tag struct {
	Flags     uint32
	Length    uint32
	HeaderLen int
}

// isShortTag reports whether (flags, length) fits the 4-byte form.
func isShortTag(flags, length uint32) bool {
	return flags <= tagFlagsMask && length <= tagLengthMask
}

// encodeTag packs flags and length into header words. n is 1 for the short
// form and 2 for the long form.
func encodeTag(flags, length uint32) (words [2]uint32, n int, err error) {
	if length > MaxTagLength {
		return words, 0, ErrTagOverflow
	}
	if isShortTag(flags, length) {
		words[0] = flags | length<<tagFlagsBits
		return words, 1, nil
	}
	words[0] = flags&tagFlagsMask | (length&tagLengthMask)<<tagFlagsBits | tagLongForm
	words[1] = flags>>tagFlagsBits | (length>>tagLengthBits)<<24
	return words, 2, nil
}

// isLongTag reports whether the first header word announces an extension word.
func isLongTag(first uint32) bool { return first&tagLongForm != 0 }

// decodeTag reverses encodeTag. second is ignored for a short-form first word.
func decodeTag(first, second uint32) Tag {
	if !isLongTag(first) {
		return Tag{
			Flags:     first & tagFlagsMask,
			Length:    first >> tagFlagsBits,
			HeaderLen: ShortTagSize,
		}
	}
	return Tag{
		Flags: first&tagFlagsMask | (second&tagExtFlagsMask)<<tagFlagsBits,
		// All but the discriminator bit of the first word belong to the length.
		Length:    (first>>tagFlagsBits)&tagLengthMask | (second&tagExtLengthMask)>>1,
		HeaderLen: LongTagSize,
	}
}

// AppendTag appends the encoded header for (flags, length) to dst.
func AppendTag(dst []byte, flags, length uint32) ([]byte, error) {
	words, n, err := encodeTag(flags, length)
	if err != nil {
		return dst, err
	}
	var b [LongTagSize]byte
	for i := 0; i < n; i++ {
		putUint(b[i*4:], words[i])
	}
	return append(dst, b[:n*4]...), nil
}

// ParseTag decodes a header from the front of b. It returns ErrEndOfStream
// if b is too short to hold the header it announces.
func ParseTag(b []byte) (Tag, error) {
	if len(b) < ShortTagSize {
		return Tag{}, ErrEndOfStream
	}
	first := getUint[uint32](b)
	if !isLongTag(first) {
		return decodeTag(first, 0), nil
	}
	if len(b) < LongTagSize {
		return Tag{}, ErrEndOfStream
	}
	return decodeTag(first, getUint[uint32](b[ShortTagSize:])), nil
}
