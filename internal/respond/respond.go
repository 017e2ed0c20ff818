// Package respond implements response assembly (spec component C6):
// composing a status line, the fixed header set, and either an inline
// error body or a two-element scatter-gather plan pointing at a mapped
// file region. Status-line byte constants follow the teacher's
// pre-compiled-status-line idiom (shockwave/pkg/shockwave/http11/
// constants.go) traded for a small lookup table since this server only
// ever emits five distinct codes.
package respond

import (
	"strconv"

	"github.com/zdb1357/webserver/internal/connstate"
)

type status struct {
	line string
	body string
}

var statusByOutcome = map[connstate.Outcome]status{
	connstate.OutcomeBadRequest:    {"HTTP/1.1 400 Bad Request\r\n", "<html><body><h1>400 Bad Request</h1></body></html>"},
	connstate.OutcomeForbidden:     {"HTTP/1.1 403 Forbidden\r\n", "<html><body><h1>403 Forbidden</h1></body></html>"},
	connstate.OutcomeNotFound:      {"HTTP/1.1 404 Not Found\r\n", "<html><body><h1>404 Not Found</h1></body></html>"},
	connstate.OutcomeInternalError: {"HTTP/1.1 500 Internal Error\r\n", "<html><body><h1>500 Internal Error</h1></body></html>"},
}

var status200Line = "HTTP/1.1 200 OK\r\n"

var codeByOutcome = map[connstate.Outcome]int{
	connstate.OutcomeBadRequest:    400,
	connstate.OutcomeForbidden:     403,
	connstate.OutcomeNotFound:      404,
	connstate.OutcomeFile:          200,
	connstate.OutcomeInternalError: 500,
}

// StatusCode returns the numeric HTTP status Assemble would emit for
// outcome, for callers (the access log) that need the code without
// re-deriving it from the status-line table.
func StatusCode(outcome connstate.Outcome) int {
	if code, ok := codeByOutcome[outcome]; ok {
		return code
	}
	return 500
}

// ErrBufferTooSmall is returned when the composed status line + headers
// would not fit in the fixed response buffer (spec.md §4.6: add_response
// returning failure).
var ErrBufferTooSmall = bufferTooSmallError{}

type bufferTooSmallError struct{}

func (bufferTooSmallError) Error() string { return "respond: response does not fit response buffer" }

// Assemble fills s.RespBuf/s.Transmit from s.Outcome and s.File. It is
// called once per completed parse, after httpparse.Step (and, for a parsed
// request, resource resolution) has set a terminal outcome.
func Assemble(s *connstate.State) error {
	var line, body string
	var contentLength int64

	if s.Outcome == connstate.OutcomeFile {
		line = status200Line
		contentLength = s.File.Size
	} else {
		st, ok := statusByOutcome[s.Outcome]
		if !ok {
			st = statusByOutcome[connstate.OutcomeInternalError]
		}
		line = st.line
		body = st.body
		contentLength = int64(len(body))
	}

	connToken := "close"
	if s.Req.KeepAlive && s.Outcome != connstate.OutcomeInternalError {
		connToken = "keep-alive"
	}

	buf := s.RespBuf[:0]
	buf = append(buf, line...)
	buf = append(buf, "Content-Length: "...)
	buf = strconv.AppendInt(buf, contentLength, 10)
	buf = append(buf, "\r\n"...)
	buf = append(buf, "Content-Type: text/html\r\n"...)
	buf = append(buf, "Connection: "...)
	buf = append(buf, connToken...)
	buf = append(buf, "\r\n\r\n"...)

	if len(buf) > connstate.ResponseBufferSize {
		return ErrBufferTooSmall
	}
	copy(s.RespBuf[:], buf)
	s.WriteIdx = len(buf)

	s.Transmit.Reset()
	s.Transmit.Headers = s.RespBuf[:s.WriteIdx]
	if s.Outcome == connstate.OutcomeFile {
		s.Transmit.Body = s.File.MappedPtr
	} else {
		// Error bodies are written into the tail of the response buffer
		// itself so the transmit plan stays a single contiguous slice;
		// spec.md §4.6 calls this the "single-vector transmit plan".
		if len(buf)+len(body) > connstate.ResponseBufferSize {
			return ErrBufferTooSmall
		}
		copy(s.RespBuf[s.WriteIdx:], body)
		s.WriteIdx += len(body)
		s.Transmit.Headers = s.RespBuf[:s.WriteIdx]
		s.Transmit.Body = nil
	}
	s.Transmit.BytesToSend = len(s.Transmit.Headers) + len(s.Transmit.Body)

	// Non-keep-alive responses should close even though headers said so
	// implicitly via the Connection token; the actual close decision is
	// made by the writer once bytes_to_send reaches zero (spec.md §4.7).
	return nil
}
