package objstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanCString(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		n     int
		found bool
	}{
		{"Empty", nil, 0, false},
		{"TerminatorOnly", []byte{0}, 1, true},
		{"Terminated", []byte("abc\x00def"), 4, true},
		{"Unterminated", []byte("abc"), 3, false},
		{"TerminatorLast", []byte("ab\x00"), 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, found := scanCString(tt.in)
			assert.Equal(t, tt.n, n)
			assert.Equal(t, tt.found, found)
		})
	}
}

func TestCheckCString(t *testing.T) {
	assert.NoError(t, checkCString(""))
	assert.NoError(t, checkCString("plain"))
	assert.ErrorIs(t, checkCString("a\x00b"), ErrEmbeddedNull)
}
