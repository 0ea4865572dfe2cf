package objstream

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks and Helpers ---

// A simple fixed-size struct for testing record framing.
type mockPayload struct {
	X, Y int32
}

type mockRecord = Fixed[mockPayload]

// labelRecord is a variable-size record: a colour followed by a C string.
type labelRecord struct {
	Color Color
	Text  string
}

func (r *labelRecord) Size() int { return ColorSize + len(r.Text) + 1 }

func (r *labelRecord) Save(out *OutputStream) error {
	if err := out.WriteColor(r.Color); err != nil {
		return err
	}
	return out.WriteCString(r.Text)
}

func (r *labelRecord) Load(in *InputStream, length uint32) (err error) {
	if r.Color, err = in.ReadColor(); err != nil {
		return err
	}
	r.Text, err = in.ReadCString()
	return err
}

// headRecord loads only the first byte of its body.
type headRecord struct{ First uint8 }

func (r *headRecord) Load(in *InputStream, length uint32) (err error) {
	r.First, err = in.ReadU8()
	return err
}

// greedyRecord reads past the end of its body.
type greedyRecord struct{}

func (greedyRecord) Load(in *InputStream, length uint32) error {
	return in.Discard(int64(length) + 2)
}

// liarRecord reports one more byte than it writes.
type liarRecord struct{}

func (liarRecord) Size() int                            { return 4 }
func (liarRecord) Save(out *OutputStream) error         { return out.WriteU16(1) }
func (liarRecord) Load(in *InputStream, _ uint32) error { return nil }

// --- Tests ---

func TestMarshalFixed(t *testing.T) {
	rec := &mockRecord{mockPayload{X: 1, Y: -2}}
	data, err := Marshal(3, rec)
	require.NoError(t, err)

	expected := []byte{
		0x00, 0x00, 0x08, 0x03, // tag: flags 3, length 8
		0x00, 0x00, 0x00, 0x01, // X
		0xFF, 0xFF, 0xFF, 0xFE, // Y
	}
	assert.Equal(t, expected, data)

	var decoded mockRecord
	tag, err := Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, Tag{Flags: 3, Length: 8, HeaderLen: ShortTagSize}, tag)
	assert.Equal(t, rec.Payload, decoded.Payload)
}

func TestMarshalLongFormRecord(t *testing.T) {
	rec := &labelRecord{Color: Color{Red: 1, Green: 2, Blue: 3}, Text: "title"}
	data, err := Marshal(300, rec)
	require.NoError(t, err)
	assert.Len(t, data, LongTagSize+rec.Size())

	var decoded labelRecord
	tag, err := Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, uint32(300), tag.Flags)
	assert.Equal(t, LongTagSize, tag.HeaderLen)
	assert.Equal(t, *rec, decoded)
}

func TestRecordSequence(t *testing.T) {
	var channel bytes.Buffer
	out, err := NewOutputStream(&channel)
	require.NoError(t, err)
	defer out.Close()

	require.NoError(t, WriteRecord(out, 1, &labelRecord{Text: "skipped tail"}))
	require.NoError(t, WriteRecord(out, 2, &mockRecord{mockPayload{X: 9, Y: 10}}))
	require.NoError(t, out.Flush(true))

	in, err := NewInputStream(&channel, uint32(channel.Len()))
	require.NoError(t, err)
	defer in.Close()

	var head headRecord
	tag, err := ReadRecord(in, &head)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), tag.Flags)
	assert.Equal(t, uint8(0), head.First)

	var fixed mockRecord
	tag, err = ReadRecord(in, &fixed)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), tag.Flags)
	assert.Equal(t, mockPayload{X: 9, Y: 10}, fixed.Payload)
	assert.True(t, in.Exhausted())
}

func TestRecordErrors(t *testing.T) {
	t.Run("OverRead", func(t *testing.T) {
		data, err := Marshal(1, &mockRecord{})
		require.NoError(t, err)
		data = append(data, 0, 0, 0, 0)

		_, err = Unmarshal(data, greedyRecord{})
		assert.ErrorIs(t, err, ErrInvalidOffset)
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		_, err := Marshal(1, liarRecord{})
		assert.ErrorIs(t, err, ErrRecordSize)
	})

	t.Run("TrailingData", func(t *testing.T) {
		data, err := Marshal(1, &mockRecord{})
		require.NoError(t, err)

		_, err = Unmarshal(append(data, 0x01), &mockRecord{})
		assert.ErrorIs(t, err, ErrTrailingData)
	})

	t.Run("TruncatedBody", func(t *testing.T) {
		data, err := Marshal(1, &mockRecord{})
		require.NoError(t, err)

		_, err = Unmarshal(data[:len(data)-1], &mockRecord{})
		assert.Error(t, err)
	})

	t.Run("BodyShorterThanPayload", func(t *testing.T) {
		data, err := AppendTag(nil, 1, 4)
		require.NoError(t, err)
		data = append(data, 1, 2, 3, 4)

		_, err = Unmarshal(data, &mockRecord{})
		assert.ErrorIs(t, err, ErrEndOfStream)
	})
}

func TestFixedSizeCache(t *testing.T) {
	c := &mockRecord{mockPayload{X: 1}}
	expectedSize := 8 // int32(4) + int32(4)

	assert.Equal(t, expectedSize, c.Size())
	assert.Equal(t, expectedSize, c.Size())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c2 := &mockRecord{mockPayload{X: 2}}
			assert.Equal(t, expectedSize, c2.Size())
		}()
	}
	wg.Wait()
}
