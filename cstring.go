package objstream

import (
	"bytes"
	"strings"
)

// scanCString looks for the C string terminator in b. It returns the number
// of bytes that belong to the string, counting the terminator when found.
// When found is false the whole of b is string content and the terminator
// lies beyond it.
func scanCString(b []byte) (n int, found bool) {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return i + 1, true
	}
	return len(b), false
}

// checkCString reports whether s can be written as a C string.
func checkCString(s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return ErrEmbeddedNull
	}
	return nil
}
