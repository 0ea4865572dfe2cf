package objstream

import "github.com/pkg/errors"

// Sizer is an interface for types that can report their encoded body size.
// WriteRecord needs it to emit the tag before the body.
type Sizer interface {
	// Size returns the size of the body in bytes.
	Size() int
}

// Saver encodes a record body.
type Saver interface {
	Save(out *OutputStream) error
}

// Loader decodes a record body of length bytes. A Loader may stop early;
// ReadRecord skips whatever it leaves unread.
type Loader interface {
	Load(in *InputStream, length uint32) error
}

// Record aggregates everything needed to frame a value behind a tag header.
type Record interface {
	Sizer
	Saver
	Loader
}

// WriteRecord writes the tag header for rec followed by its body.
func WriteRecord(out *OutputStream, flags uint32, rec Record) error {
	size := rec.Size()
	if size < 0 || int64(size) > MaxTagLength {
		return errors.Wrapf(ErrTagOverflow, "record flags=%d size=%d", flags, size)
	}
	if err := out.WriteTag(flags, uint32(size)); err != nil {
		return errors.Wrapf(err, "write tag flags=%d", flags)
	}
	start := out.Count()
	if err := rec.Save(out); err != nil {
		return errors.Wrapf(err, "save record flags=%d", flags)
	}
	if written := out.Count() - start; written != int64(size) {
		return errors.Wrapf(ErrRecordSize, "record flags=%d: size %d, wrote %d", flags, size, written)
	}
	return nil
}

// ReadRecord reads a tag header, hands the body to rec and leaves the stream
// positioned right after the body.
func ReadRecord(in *InputStream, rec Loader) (Tag, error) {
	tag, err := in.ReadTag()
	if err != nil {
		return tag, errors.Wrap(err, "read tag")
	}
	in.Mark()
	if err := rec.Load(in, tag.Length); err != nil {
		return tag, errors.Wrapf(err, "load record flags=%d length=%d", tag.Flags, tag.Length)
	}
	if err := in.Skip(tag.Length); err != nil {
		return tag, errors.Wrapf(err, "skip record flags=%d length=%d", tag.Flags, tag.Length)
	}
	return tag, nil
}
