package objstream

import "errors"

var (
	// ErrNilIO indicates that NewInputStream/NewOutputStream was called with a nil channel.
	ErrNilIO = errors.New("objstream: NewInputStream/NewOutputStream called with a nil io.Reader/io.Writer")

	// ErrEndOfStream indicates that the bounded region was exhausted before the
	// requested bytes were available.
	ErrEndOfStream = errors.New("objstream: end of stream")

	// ErrChannel indicates that the underlying channel failed to transfer the
	// requested bytes. The channel's own error is wrapped alongside it.
	ErrChannel = errors.New("objstream: channel error")

	// ErrClosed indicates an operation on a stream whose buffer has been released.
	ErrClosed = errors.New("objstream: stream closed")

	// ErrInvalidOffset indicates a Skip whose target lies before the current frontier.
	ErrInvalidOffset = errors.New("objstream: skip target before current position")

	// ErrTagOverflow indicates a tag length that does not fit the 31 bits the long form carries.
	ErrTagOverflow = errors.New("objstream: tag length exceeds 31 bits")

	// ErrEmbeddedNull indicates a string that cannot be written as a C string
	// because it contains a NUL byte.
	ErrEmbeddedNull = errors.New("objstream: string contains a NUL byte")

	// ErrRecordSize indicates that a record body wrote a different number of
	// bytes than its Size reported.
	ErrRecordSize = errors.New("objstream: record size mismatch")

	// ErrTrailingData is returned by Unmarshal when bytes remain after the record.
	ErrTrailingData = errors.New("objstream: trailing data found after record")
)

// Status is the tri-state outcome of a stream operation.
type Status int

const (
	StatusNormal Status = iota
	StatusEndOfStream
	StatusChannelError
)

func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusEndOfStream:
		return "end-of-stream"
	case StatusChannelError:
		return "channel-error"
	}
	return "unknown"
}

// StatusOf classifies an error returned by a stream operation. A backward
// skip is reported as end-of-stream; everything that is not an end-of-stream
// condition is a channel error.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusNormal
	case errors.Is(err, ErrEndOfStream), errors.Is(err, ErrInvalidOffset):
		return StatusEndOfStream
	}
	return StatusChannelError
}

// channelError carries both ErrChannel and the failure reported by the channel.
type channelError struct {
	op  string
	err error
}

func newChannelError(op string, err error) error {
	return &channelError{op: op, err: err}
}

func (e *channelError) Error() string {
	return "objstream: channel error during " + e.op + ": " + e.err.Error()
}

func (e *channelError) Unwrap() []error { return []error{ErrChannel, e.err} }
