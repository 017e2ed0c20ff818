//go:build linux

package reactor

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/zdb1357/webserver/internal/conn"
	"github.com/zdb1357/webserver/internal/config"
	"github.com/zdb1357/webserver/internal/logging"
	"github.com/zdb1357/webserver/internal/queue"
	"github.com/zdb1357/webserver/internal/resource"
	"github.com/zdb1357/webserver/internal/syncutil"
)

const maxEvents = 10000

// Reactor is the single-threaded, edge-triggered readiness loop. It owns
// the listening socket and the fd-indexed connection table. The dispatch
// loop itself only ever runs on one goroutine, but a worker closes a
// connection from its own goroutine when Process returns an error (the
// response does not fit the buffer, or the rearm fails), so the table and
// the live-connection counter are
// guarded by mu rather than left to the single-owner discipline that
// covers everything else here (spec.md §9: "a hash map from fd to
// connection... the table-by-fd trick is an optimization, not a
// contract" — the map shape is free to pick, concurrent access to it is
// not).
type Reactor struct {
	epfd     int
	listenFD int
	cfg      config.Config
	resolver *resource.Resolver
	q        *queue.Queue
	log      *logging.Logger

	mu    syncutil.Mutex
	conns map[int]*conn.Connection

	activeUsers atomic.Int64
	stop        atomic.Bool
}

// New constructs a Reactor listening on port (0 picks an ephemeral port,
// used by tests). It does not start accepting connections until Run is
// called.
func New(cfg config.Config, q *queue.Queue, log *logging.Logger, port int) (*Reactor, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}

	listenFD, err := listen(port, cfg.ListenBacklog)
	if err != nil {
		unix.Close(epfd)
		return nil, err
	}

	// The listener itself is registered without one-shot so it can fire
	// repeatedly (spec.md §4.8): every epoll_wait wakeup for it means at
	// least one connection is ready to accept.
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(listenFD)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, listenFD, &ev); err != nil {
		unix.Close(listenFD)
		unix.Close(epfd)
		return nil, err
	}

	return &Reactor{
		epfd:     epfd,
		listenFD: listenFD,
		cfg:      cfg,
		resolver: resource.New(cfg.DocRoot),
		q:        q,
		log:      log,
		conns:    make(map[int]*conn.Connection),
	}, nil
}

// ActiveUsers returns the current count of registered client sockets,
// which spec.md §8 invariant 4 requires to equal the reactor's live
// registration count.
func (r *Reactor) ActiveUsers() int64 { return r.activeUsers.Load() }

// Port reports the listening socket's bound port, useful when New was
// called with port 0 and the kernel picked an ephemeral one (tests).
func (r *Reactor) Port() (int, error) {
	sa, err := unix.Getsockname(r.listenFD)
	if err != nil {
		return 0, err
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, fmt.Errorf("reactor: unexpected sockaddr type %T", sa)
	}
	return in4.Port, nil
}

// Run blocks, driving the event loop until Stop is called.
func (r *Reactor) Run() error {
	events := make([]unix.EpollEvent, maxEvents)
	for !r.stop.Load() {
		// A bounded wait lets an idle loop notice Stop: closing the
		// listener does not by itself wake a blocked epoll_wait.
		n, err := unix.EpollWait(r.epfd, events, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			// spec.md §9: a fatal exit here drops all live connections
			// without graceful shutdown; that limitation is preserved.
			return err
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			fd := int(ev.Fd)

			if fd == r.listenFD {
				r.acceptLoop()
				continue
			}

			var c *conn.Connection
			var ok bool
			r.mu.With(func() { c, ok = r.conns[fd] })
			if !ok {
				continue
			}

			if ev.Events&(unix.EPOLLHUP|unix.EPOLLERR|unix.EPOLLRDHUP) != 0 {
				c.Close()
				continue
			}

			if ev.Events&unix.EPOLLIN != 0 {
				// Read only drains bytes off the socket; it never decides
				// whether a request is complete (spec.md §4.3, §5). Every
				// successful read hands the connection to a worker, whose
				// Process calls the parser and rearms for more reading
				// itself if the request is still incomplete.
				if err := c.Read(); err != nil {
					c.Close()
					continue
				}
				if !r.q.Append(c) {
					c.Close()
				}
			}

			if ev.Events&unix.EPOLLOUT != 0 {
				keepOpen, err := c.Write()
				if err == nil && c.State.Transmit.Done() {
					// Transmit.Done() is also true mid-stream right after
					// an EAGAIN rearm only if BytesToSend had already
					// reached zero, which is exactly finishWrite's own
					// completion check — so this fires once per response,
					// not once per partial writev.
					rec := c.LastAccess
					r.log.AccessLog(c.Peer, rec.Method, rec.Target, rec.Status, rec.Bytes)
				}
				if err != nil || !keepOpen {
					c.Close()
				}
			}
		}
	}
	return nil
}

// acceptLoop drains pending connections on the listener. The listener is
// not edge-triggered so one accept() per wakeup is acceptable (spec.md
// §4.8), but draining in a loop here costs nothing extra and avoids
// leaving a backlog connection stranded until the next unrelated wakeup.
func (r *Reactor) acceptLoop() {
	for {
		fd, _, err := unix.Accept4(r.listenFD, unix.SOCK_NONBLOCK)
		if err != nil {
			if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
				r.log.Errorf("accept: %v", err)
			}
			return
		}

		if r.activeUsers.Load() >= int64(r.cfg.MaxConnections) {
			unix.Close(fd)
			continue
		}

		unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)

		ev := unix.EpollEvent{
			Events: unix.EPOLLIN | unix.EPOLLET | unix.EPOLLONESHOT | unix.EPOLLRDHUP,
			Fd:     int32(fd),
		}
		if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
			unix.Close(fd)
			continue
		}

		c := &conn.Connection{}
		c.Init(fd, peerString(fd), r.resolver, r)
		r.mu.With(func() { r.conns[fd] = c })
		r.activeUsers.Add(1)
	}
}

// Closed implements conn.Rearmer. A Connection calls it at the end of its
// own Close, from whichever goroutine called Close — the reactor's, on a
// read/write/hangup error, or a worker's, when Process fails. It is the
// only thing that is allowed to mutate conns or activeUsers outside of
// acceptLoop, which is why both are guarded by mu.
func (r *Reactor) Closed(fd int) {
	r.mu.With(func() {
		if _, ok := r.conns[fd]; ok {
			delete(r.conns, fd)
			r.activeUsers.Add(-1)
		}
	})
}

// ModFD implements conn.Rearmer: it rewrites the one-shot registration to
// the requested interest plus edge-triggered/one-shot/peer-hangup, which
// re-arms exactly once (spec.md §4.8). This is the moment ownership
// returns from a worker to the reactor.
func (r *Reactor) ModFD(fd int, interest conn.Interest) error {
	var events uint32 = unix.EPOLLET | unix.EPOLLONESHOT | unix.EPOLLRDHUP
	switch interest {
	case conn.InterestRead:
		events |= unix.EPOLLIN
	case conn.InterestWrite:
		events |= unix.EPOLLOUT
	}
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

// Deregister implements conn.Rearmer.
func (r *Reactor) Deregister(fd int) error {
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Stop causes Run to return after its current epoll_wait call.
func (r *Reactor) Stop() {
	r.stop.Store(true)
	unix.Close(r.listenFD)
}

func peerString(fd int) string {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return "?"
	}
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		a := in4.Addr
		return fmt.Sprintf("%d.%d.%d.%d:%d", a[0], a[1], a[2], a[3], in4.Port)
	}
	return "?"
}
