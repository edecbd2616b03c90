package parse

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeName repairs names that were stored as UTF-8 bytes escaped one byte
// per code point (so "é" shows up as "Ã©"). Each code point is taken as a
// Latin-1 byte and the result is read back as UTF-8. When the name has code
// points above U+00FF, or the bytes are not valid UTF-8, it is returned as is.
func DecodeName(s string) string {
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil || !utf8.Valid(b) {
		return s
	}
	return string(b)
}
