// Package conn implements the per-connection object (spec component C4)
// and, since it owns the socket, also drives the scatter-gather writer
// (component C7): Connection exposes init/read/write/close to the reactor
// and Process to the worker pool, enforcing the single-owner handoff
// spec.md §5 describes — a Connection's own fields are never locked;
// ownership is structural, guarded by the reactor's one-shot rearm.
package conn

import (
	"golang.org/x/sys/unix"

	"github.com/zdb1357/webserver/internal/connstate"
	"github.com/zdb1357/webserver/internal/httpparse"
	"github.com/zdb1357/webserver/internal/resource"
	"github.com/zdb1357/webserver/internal/respond"
)

// Interest is the reactor registration a Connection currently wants.
type Interest int

const (
	InterestNone Interest = iota
	InterestRead
	InterestWrite
)

// Rearmer is the reactor's side of the ownership handoff: ModFD rewrites a
// socket's one-shot registration, which is what makes it safe for a worker
// to hand a connection back without any per-connection lock (spec.md §4.8,
// §9). Closed tells the reactor a connection has finished closing itself so
// it can reconcile its fd-indexed table and live-connection counter — the
// one piece of reactor state a worker goroutine cannot touch directly.
type Rearmer interface {
	ModFD(fd int, interest Interest) error
	Deregister(fd int) error
	Closed(fd int)
}

// AccessRecord is the subset of a just-finished request/response cycle the
// access log cares about, captured before ResetForNextRequest clears
// State.Req for the next keep-alive request (original_source/old_version/
// webserver1.1/log.cpp: one line per request — method, target, status,
// bytes, peer).
type AccessRecord struct {
	Method string
	Target string
	Status int
	Bytes  int64
}

// Connection is the only long-lived per-client entity. One is allocated
// per accepted fd and reused across keep-alive requests.
type Connection struct {
	FD   int
	Peer string

	Resolver *resource.Resolver
	Rearmer  Rearmer

	State connstate.State

	// LastAccess holds the most recently finished request's access-log
	// fields; the reactor reads it after a successful Write to emit one
	// AccessLog line per request (spec.md §9 supplemented feature).
	LastAccess AccessRecord

	closed bool
}

// Init records the accepted socket and its peer, and resets per-request
// state. It does not touch the reactor registration; the reactor registers
// the fd itself right after accept (spec.md §4.4: "registers the socket
// with the reactor").
func (c *Connection) Init(fd int, peer string, resolver *resource.Resolver, rearmer Rearmer) {
	c.FD = fd
	c.Peer = peer
	c.Resolver = resolver
	c.Rearmer = rearmer
	c.closed = false
	c.State.ResetFull()
}

// Read drains the socket in a loop until EWOULDBLOCK, per the
// edge-triggered contract (spec.md §4.4): an edge-triggered readable event
// fires once per transition to readable, so the handler must read until
// there is nothing left or a subsequent ready-to-read transition may never
// be observed. Read only ever touches the socket — it never calls the
// parser and never resolves a request against the filesystem (spec.md
// §4.3, §5); both happen in Process, on the worker, matching the C++
// original's read() (http_conn.cpp:130), which only fills the buffer
// before handing the connection to a worker's process().
func (c *Connection) Read() error {
	s := &c.State
	for {
		if s.ReadIdx >= connstate.ReadBufferSize {
			return httpparse.ErrRequestTooLarge
		}

		n, rerr := unix.Read(c.FD, s.ReadBuf[s.ReadIdx:])
		if rerr != nil {
			if rerr == unix.EAGAIN || rerr == unix.EWOULDBLOCK {
				return nil
			}
			return rerr
		}
		if n == 0 {
			return httpparse.ErrPeerClosed
		}
		s.ReadIdx += n
	}
}

// Process is the worker's top-level handler (spec.md §4.3: "process...
// calls the parser; if more data is needed it rearms the reactor for
// reading and returns; if parsing succeeded or produced an error code, it
// assembles the response"). It runs httpparse.Step against whatever Read
// buffered, resource resolution (do_request — stat, open, mmap) once a
// request is fully parsed, and response assembly, flipping the
// connection's interest to read or write as appropriate. All parsing and
// all blocking filesystem work happen here, on the worker thread; the rearm
// at the end of Process is the moment ownership returns to the reactor.
func (c *Connection) Process() error {
	s := &c.State
	if s.Outcome == connstate.OutcomeNone {
		httpparse.Step(s)
	}

	if s.Outcome == connstate.OutcomeNone {
		// Step consumed what was buffered but the request is still
		// incomplete: rearm for more reads and wait for the next
		// EPOLLIN wakeup to hand the connection back here.
		return c.Rearmer.ModFD(c.FD, InterestRead)
	}

	if s.Outcome == connstate.OutcomeParsed {
		outcome, plan, err := c.Resolver.Resolve(s.Req.Target)
		if err != nil {
			// A stat/open/mmap failure still gets a response (500) rather
			// than a silently dropped connection; spec.md §7's status
			// table has no "just hang up" entry.
			outcome = connstate.OutcomeInternalError
		}
		s.File = plan
		s.Outcome = outcome
	}

	if err := respond.Assemble(s); err != nil {
		// Buffer overflow building the response: spec.md §4.6, caller
		// closes the connection.
		return err
	}
	return c.Rearmer.ModFD(c.FD, InterestWrite)
}

// Write drains the scatter-gather transmit plan (spec.md §4.7). Returns
// (keepOpen, err): keepOpen is false either on a fatal write error or on
// the correct-but-subtle "wrote everything, not keep-alive" case, both of
// which signal the reactor to close the connection.
func (c *Connection) Write() (keepOpen bool, err error) {
	s := &c.State
	for {
		if s.Transmit.Done() {
			return c.finishWrite()
		}

		n, werr := writev(c.FD, s.Transmit.Headers, s.Transmit.Body)
		if werr != nil {
			if werr == unix.EAGAIN || werr == unix.EWOULDBLOCK {
				if err := c.Rearmer.ModFD(c.FD, InterestWrite); err != nil {
					return false, err
				}
				return true, nil
			}
			resource.Unmap(&s.File)
			return false, werr
		}
		advance(s, n)
	}
}

func (c *Connection) finishWrite() (keepOpen bool, err error) {
	s := &c.State
	c.LastAccess = AccessRecord{
		Method: s.Req.Method,
		Target: s.Req.Target,
		Status: respond.StatusCode(s.Outcome),
		Bytes:  int64(s.Transmit.BytesSent),
	}
	resource.Unmap(&s.File)
	keepAlive := s.Req.KeepAlive && s.Outcome != connstate.OutcomeInternalError
	if keepAlive {
		s.ResetForNextRequest()
	}
	if err := c.Rearmer.ModFD(c.FD, InterestRead); err != nil {
		return false, err
	}
	return keepAlive, nil
}

// advance reslices the transmit plan after n bytes have gone out, per
// spec.md §4.7's reslicing rule: once bytes_sent crosses the header
// length, the file-region slot takes over.
func advance(s *connstate.State, n int) {
	s.Transmit.BytesSent += n
	s.Transmit.BytesToSend -= n

	headerLen := len(s.RespBuf[:s.WriteIdx])
	if s.Transmit.BytesSent >= headerLen {
		s.Transmit.Headers = nil
		off := s.Transmit.BytesSent - headerLen
		if off < len(s.File.MappedPtr) {
			s.Transmit.Body = s.File.MappedPtr[off:]
		} else {
			s.Transmit.Body = nil
		}
	} else {
		s.Transmit.Headers = s.Transmit.Headers[n:]
	}
}

// Close is idempotent: it deregisters from the reactor, closes the
// descriptor, unmaps any live file region (spec.md §4.4, §4.5), and tells
// the reactor the fd is gone so it can drop its table entry and decrement
// its live-connection count (spec.md §8 invariant 4) — bookkeeping a
// worker goroutine must never do to the reactor's map directly. Close may
// run on the reactor's own goroutine (a read/write error) or on a worker's
// (Process failed); either way Closed is the only thing that touches
// reactor state, and it synchronizes internally.
func (c *Connection) Close() error {
	if c.closed || c.FD < 0 {
		return nil
	}
	c.closed = true
	resource.Unmap(&c.State.File)
	fd := c.FD
	if c.Rearmer != nil {
		_ = c.Rearmer.Deregister(fd)
	}
	err := unix.Close(fd)
	c.FD = -1
	if c.Rearmer != nil {
		c.Rearmer.Closed(fd)
	}
	return err
}
