// Package httpparse implements the incremental HTTP/1.1 request parser
// (spec component C5): a line extractor over a fixed buffer plus a
// RequestLine/Headers/Body state machine that resumes across however many
// partial reads it takes for a request to arrive. It performs no I/O of
// its own and knows nothing about the filesystem: once a full request-line
// and header block have been read, Step sets OutcomeParsed and stops.
// Resource resolution (stat + open + mmap) is the caller's job. Step itself
// is driven from conn.Connection.Process, on a worker goroutine, not from
// the reactor's read loop (spec.md §4.3, §5): the reactor only fills the
// buffer, so a partial request never ties up the single reactor thread
// waiting on the parser.
package httpparse

import (
	"strconv"

	"github.com/zdb1357/webserver/internal/connstate"
)

// Step advances the state machine as far as the bytes currently in
// s.ReadBuf[s.CheckedIdx:s.ReadIdx] allow. It must be called again after
// every successful read() that adds bytes to the buffer.
//
// On return, s.Outcome is OutcomeNone if the caller should keep reading,
// OutcomeParsed if a full request is ready for resource resolution, or
// OutcomeBadRequest/OutcomeInternalError if parsing itself failed.
func Step(s *connstate.State) {
	for {
		switch s.Parse {
		case connstate.StateRequestLine:
			res, lineEnd := scanLine(s.ReadBuf[:], s.CheckedIdx, s.ReadIdx)
			switch res {
			case lineOpen:
				return
			case lineBad:
				s.Outcome = connstate.OutcomeBadRequest
				return
			}
			line := s.ReadBuf[s.StartLine:lineEnd]
			s.CheckedIdx = lineEnd + 2
			s.StartLine = s.CheckedIdx

			if !parseRequestLine(s, line) {
				s.Outcome = connstate.OutcomeBadRequest
				return
			}
			s.Parse = connstate.StateHeaders

		case connstate.StateHeaders:
			res, lineEnd := scanLine(s.ReadBuf[:], s.CheckedIdx, s.ReadIdx)
			switch res {
			case lineOpen:
				return
			case lineBad:
				s.Outcome = connstate.OutcomeBadRequest
				return
			}
			line := s.ReadBuf[s.StartLine:lineEnd]
			s.CheckedIdx = lineEnd + 2
			s.StartLine = s.CheckedIdx

			if len(line) == 0 {
				// Blank line: end of headers.
				if s.Req.ContentLen > 0 {
					s.Parse = connstate.StateBody
					continue
				}
				s.Outcome = connstate.OutcomeParsed
				return
			}

			if !parseHeaderLine(s, line) {
				s.Outcome = connstate.OutcomeBadRequest
				return
			}

		case connstate.StateBody:
			// Reached by a GET with a positive Content-Length. The body
			// is never interpreted (no accepted method consumes one);
			// Step keeps reporting OutcomeNone until that many bytes
			// have arrived after the header block.
			if s.ReadIdx >= s.CheckedIdx+int(s.Req.ContentLen) {
				s.Outcome = connstate.OutcomeParsed
				return
			}
			return

		default:
			s.Outcome = connstate.OutcomeInternalError
			return
		}
	}
}

// parseRequestLine parses "METHOD SP target SP version" in place. Only GET
// and HTTP/1.1 are accepted; an http:// absolute-form target has its
// scheme/authority stripped, per spec.md §4.5.
func parseRequestLine(s *connstate.State, line []byte) bool {
	sp1 := indexByte(line, ' ')
	if sp1 <= 0 {
		return false
	}
	method := line[:sp1]
	if !equalFoldASCII(method, "GET") {
		return false
	}

	rest := line[sp1+1:]
	sp2 := indexByte(rest, ' ')
	if sp2 <= 0 {
		return false
	}
	target := rest[:sp2]
	version := rest[sp2+1:]

	if !equalFoldASCII(version, "HTTP/1.1") {
		return false
	}

	if hasPrefixFoldASCII(target, "http://") {
		target = target[len("http://"):]
		idx := indexByte(target, '/')
		if idx < 0 {
			return false
		}
		target = target[idx:]
	}
	if len(target) == 0 || target[0] != '/' {
		return false
	}
	if len(target) > connstate.FilenameLen {
		return false
	}

	s.Req.Method = "GET"
	s.Req.Target = string(target)
	s.Req.Version = "HTTP/1.1"
	return true
}

// parseHeaderLine handles one "Name: value" header, recognizing only
// Host, Connection, and Content-Length per spec.md §4.5; everything else
// is accepted and ignored.
func parseHeaderLine(s *connstate.State, line []byte) bool {
	colon := indexByte(line, ':')
	if colon < 0 {
		return false
	}
	name := line[:colon]
	value := trimSpace(line[colon+1:])

	switch {
	case equalFoldASCII(name, "Connection"):
		if equalFoldASCII(value, "keep-alive") {
			s.Req.KeepAlive = true
		}
	case equalFoldASCII(name, "Content-Length"):
		n, err := strconv.ParseInt(string(value), 10, 64)
		if err != nil || n < 0 {
			return false
		}
		s.Req.ContentLen = n
	case equalFoldASCII(name, "Host"):
		s.Req.Host = string(value)
	}
	return true
}
