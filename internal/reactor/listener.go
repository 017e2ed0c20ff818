//go:build linux

// Package reactor implements the edge-triggered I/O readiness loop (spec
// component C8): a single thread blocking on epoll_wait, accepting new
// connections on the listening socket, and dispatching readable/writable
// events to Connection.Read/Write. One-shot rearm is epoll's
// EPOLLET|EPOLLONESHOT, which is what realizes spec.md §5's
// lock-free single-owner invariant (see DESIGN.md).
//
// Raw-fd listener setup (socket/bind/listen/setnonblock) follows the
// cross-platform discipline in the retrieved mdlayher/socket Conn: call
// the unix.* syscalls directly instead of going through net.Listen, since
// this reactor needs the raw fd for epoll registration, not a net.Conn.
package reactor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// listen creates a non-blocking, reusable-address IPv4 TCP listening
// socket bound to port, backlog per spec.md §6 (5), and returns its fd.
func listen(port int, backlog int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("reactor: socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reactor: SO_REUSEADDR: %w", err)
	}

	addr := &unix.SockaddrInet4{Port: port}
	// 0.0.0.0, IPv4 only, per spec.md §6.
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reactor: bind: %w", err)
	}

	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reactor: listen: %w", err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reactor: setnonblock: %w", err)
	}

	return fd, nil
}
