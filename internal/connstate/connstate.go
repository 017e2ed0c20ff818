// Package connstate holds the pure, socket-free per-connection data model:
// the fixed read/response buffers, the incremental parser's cursors and
// state, the resolved file plan, and the scatter-gather transmit plan. It is
// shared by internal/httpparse (which fills it in) and internal/respond
// (which reads it to assemble a response), and is embedded by
// internal/conn.Connection, which adds the socket and reactor plumbing.
package connstate

const (
	// ReadBufferSize is the fixed capacity of a connection's read buffer.
	ReadBufferSize = 2048

	// ResponseBufferSize is the fixed capacity of a connection's response
	// (status line + headers) buffer.
	ResponseBufferSize = 1024

	// FilenameLen bounds the composed doc-root-relative path.
	FilenameLen = 200
)

// ParseState is the request parser's current state.
type ParseState int

const (
	// StateRequestLine is the initial state: scanning for "METHOD SP
	// target SP version CRLF".
	StateRequestLine ParseState = iota
	// StateHeaders scans header lines until the blank line terminator.
	StateHeaders
	// StateBody waits for Content-Length bytes to arrive. Reached when a
	// GET request carries a positive Content-Length header.
	StateBody
)

// Outcome is what the parser (or resource resolution) produced for the
// worker to act on.
type Outcome int

const (
	// OutcomeNone means more data is needed before a result exists.
	OutcomeNone Outcome = iota
	// OutcomeParsed means a full request-line and header block has been
	// read; resource resolution (stat + open + mmap) still has to run
	// before a response can be assembled. Both the parse that reaches this
	// outcome and the resolution that follows it happen in Process, on the
	// worker — never in Read, which only fills the buffer (spec.md §4.3,
	// §5).
	OutcomeParsed
	// OutcomeBadRequest maps to HTTP 400.
	OutcomeBadRequest
	// OutcomeForbidden maps to HTTP 403.
	OutcomeForbidden
	// OutcomeNotFound maps to HTTP 404.
	OutcomeNotFound
	// OutcomeFile means a file was resolved and mapped; maps to HTTP 200.
	OutcomeFile
	// OutcomeInternalError means the parser reached an unreachable state
	// or resource resolution failed; maps to HTTP 500.
	OutcomeInternalError
)

// Request holds the parsed request-line and header fields this server
// cares about. Fields are string copies of the parsed bytes, so they stay
// valid after State.ReadBuf is reused; Reset clears them.
type Request struct {
	Method     string
	Target     string
	Version    string
	Host       string
	KeepAlive  bool
	ContentLen int64
}

// Reset clears parsed fields for reuse across keep-alive requests.
func (r *Request) Reset() {
	r.Method = ""
	r.Target = ""
	r.Version = ""
	r.Host = ""
	r.KeepAlive = false
	r.ContentLen = 0
}

// FilePlan is the resolved static-file resource a GET request maps to.
type FilePlan struct {
	Path      string
	Size      int64
	Mode      uint32
	MappedPtr []byte // Mmap'd region; nil once unmapped.
}

// Mapped reports whether a live mapping backs this plan.
func (f *FilePlan) Mapped() bool { return f.MappedPtr != nil }

// Reset clears the file plan. It does not unmap; callers must unmap first.
func (f *FilePlan) Reset() {
	f.Path = ""
	f.Size = 0
	f.Mode = 0
	f.MappedPtr = nil
}

// TransmitPlan is the two-element scatter-gather descriptor: [0] is the
// response buffer's header bytes, [1] is the mapped file region (or empty
// for error responses).
type TransmitPlan struct {
	Headers     []byte
	Body        []byte
	BytesToSend int
	BytesSent   int
}

// Reset clears the transmit plan for reuse.
func (t *TransmitPlan) Reset() {
	t.Headers = nil
	t.Body = nil
	t.BytesToSend = 0
	t.BytesSent = 0
}

// Done reports whether every planned byte has gone out.
func (t *TransmitPlan) Done() bool { return t.BytesToSend <= 0 }

// State is the full per-connection data model: buffers, cursors, parsed
// request, file plan and transmit plan. It carries no socket or reactor
// reference so it can be constructed and driven in tests with no I/O.
type State struct {
	ReadBuf  [ReadBufferSize]byte
	StartLine  int // Index where the current unparsed line begins.
	CheckedIdx int // Bytes the parser has inspected.
	ReadIdx    int // Bytes received from the socket so far.

	Parse ParseState

	Req Request

	RespBuf  [ResponseBufferSize]byte
	WriteIdx int

	File     FilePlan
	Transmit TransmitPlan

	Outcome Outcome
}

// Invariant reports whether the buffer cursor ordering spec.md §8 invariant
// 1 requires still holds: 0 ≤ StartLine ≤ CheckedIdx ≤ ReadIdx ≤ capacity.
func (s *State) Invariant() bool {
	return 0 <= s.StartLine &&
		s.StartLine <= s.CheckedIdx &&
		s.CheckedIdx <= s.ReadIdx &&
		s.ReadIdx <= ReadBufferSize
}

// ResetForNextRequest reinitializes parse/response state between keep-alive
// requests on the same connection, preserving nothing from the prior
// request. The caller is responsible for unmapping any live file plan
// first.
func (s *State) ResetForNextRequest() {
	// Shift any bytes already read past the current request (pipelined
	// bytes) down to the front of the buffer so the next parse starts
	// clean; callers that don't pipeline will have ReadIdx == CheckedIdx
	// and this is a no-op copy of zero bytes.
	remaining := s.ReadIdx - s.CheckedIdx
	if remaining > 0 {
		copy(s.ReadBuf[0:remaining], s.ReadBuf[s.CheckedIdx:s.ReadIdx])
	}
	s.StartLine = 0
	s.CheckedIdx = 0
	s.ReadIdx = remaining

	s.Parse = StateRequestLine
	s.Req.Reset()

	s.WriteIdx = 0

	s.File.Reset()
	s.Transmit.Reset()

	s.Outcome = OutcomeNone
}

// ResetFull reinitializes everything, including any pipelined remainder.
// Used when a connection slot is reused for a brand new accept().
func (s *State) ResetFull() {
	s.StartLine = 0
	s.CheckedIdx = 0
	s.ReadIdx = 0
	s.Parse = StateRequestLine
	s.Req.Reset()
	s.WriteIdx = 0
	s.File.Reset()
	s.Transmit.Reset()
	s.Outcome = OutcomeNone
}
