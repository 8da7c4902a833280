package nex

import (
	"bytes"
	"fmt"
	"strings"
)

// fixedString decodes a NUL padded text field. The declared width is
// authoritative: a field without a terminator uses every byte.
func fixedString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// checkFixedString reports whether s fits a NUL padded field of limit bytes
// and reads back unchanged.
func checkFixedString(s string, limit int, field string) error {
	if len(s) > limit {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFieldTooLong, field, len(s), limit)
	}
	if i := strings.IndexByte(s, 0); i >= 0 {
		return fmt.Errorf("%w: %s has a NUL byte at %d", ErrInconsistentVariable, field, i)
	}
	return nil
}

// putFixedString copies s into dst and zero fills the remainder.
func putFixedString(dst []byte, s, field string) error {
	if err := checkFixedString(s, len(dst), field); err != nil {
		return err
	}
	n := copy(dst, s)
	clear(dst[n:])
	return nil
}
