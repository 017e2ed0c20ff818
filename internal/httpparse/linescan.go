package httpparse

// lineResult is the line extractor's verdict for one scan over
// s.ReadBuf[s.CheckedIdx:s.ReadIdx].
type lineResult int

const (
	// lineOpen means no CRLF-terminated line was found yet; the caller
	// should wait for more bytes from the socket.
	lineOpen lineResult = iota
	// lineOK means a complete line was found; the caller then advances
	// s.CheckedIdx just past its terminating CRLF.
	lineOK
	// lineBad means a bare '\r' not followed by '\n', or a bare '\n' not
	// preceded by '\r', was found.
	lineBad
)

// scanLine scans buf[from:to] for a CRLF terminator and returns the
// verdict plus the line's end index (exclusive of CRLF) when lineOK.
//
// Unlike the teacher's http11 parser (which buffers a whole request before
// parsing it), this scans byte-by-byte across however many read() calls it
// takes to see a full line, so it can be driven incrementally from a fixed
// buffer without ever re-reading bytes already inspected.
func scanLine(buf []byte, from, to int) (lineResult, int) {
	for i := from; i < to; i++ {
		switch buf[i] {
		case '\r':
			if i+1 >= to {
				return lineOpen, 0
			}
			if buf[i+1] != '\n' {
				return lineBad, 0
			}
			return lineOK, i
		case '\n':
			// A bare '\n' with no preceding '\r' seen in this scan is
			// malformed; scanLine never crosses a line boundary so this
			// index is always the start of what would have to be a '\r'.
			return lineBad, 0
		}
	}
	return lineOpen, 0
}
