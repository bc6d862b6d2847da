package bulk

import (
	"bytes"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// clean prepares a CSV buffer for the COPY channel: the UTF-8 BOM that
// Windows exports prepend is stripped, and invalid UTF-8 sequences are
// replaced so the server does not abort the copy with an encoding error.
func clean(buf []byte) []byte {
	buf = bytes.TrimPrefix(buf, utf8BOM)
	if utf8.Valid(buf) {
		return buf
	}
	return sanitizeUTF8(buf)
}

// sanitizeUTF8 rebuilds buf with every invalid sequence replaced by U+FFFD.
func sanitizeUTF8(buf []byte) []byte {
	out := make([]byte, 0, len(buf))
	for len(buf) > 0 {
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size == 1 {
			out = utf8.AppendRune(out, utf8.RuneError)
		} else {
			out = append(out, buf[:size]...)
		}
		buf = buf[size:]
	}
	return out
}
